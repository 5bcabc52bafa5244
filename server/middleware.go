package server

import (
	"net/http"
	"net/url"

	"github.com/viant/mcp-protocol/schema"
)

const protocolVersionHeader = "MCP-Protocol-Version"

// Middleware wraps an http.Handler
type Middleware func(next http.Handler) http.Handler

// ChainMiddlewareHandlers wraps h so that the first middleware runs first
func ChainMiddlewareHandlers(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// protocolVersionMiddleware rejects requests naming an unsupported protocol
// version; an absent header is accepted. The response always carries the
// server version.
func protocolVersionMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if version := r.Header.Get(protocolVersionHeader); version != "" && version != schema.LatestProtocolVersion {
				http.Error(w, "invalid "+protocolVersionHeader, http.StatusBadRequest)
				return
			}
			w.Header().Set(protocolVersionHeader, schema.LatestProtocolVersion)
			next.ServeHTTP(w, r)
		})
	}
}

// originValidationMiddleware rejects browser requests whose Origin is not allowed.
// Requests without Origin pass; "*" allows any origin and an allowed origin
// without a port matches that host on any port.
func originValidationMiddleware(allowed []string) Middleware {
	allowedOrigins := originSet(allowed)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && !originAllowed(allowedOrigins, origin) {
				http.Error(w, "origin not allowed", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func originSet(origins []string) map[string]bool {
	ret := make(map[string]bool, len(origins))
	for _, origin := range origins {
		ret[origin] = true
	}
	return ret
}

func originAllowed(allowed map[string]bool, origin string) bool {
	if allowed["*"] || allowed[origin] {
		return true
	}
	if u, err := url.Parse(origin); err == nil && u.Port() != "" {
		return allowed[u.Scheme+"://"+u.Hostname()]
	}
	return false
}
