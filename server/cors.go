package server

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	AllowOriginHeader      = "Access-Control-Allow-Origin"
	AllowHeadersHeader     = "Access-Control-Allow-Headers"
	AllowMethodsHeader     = "Access-Control-Allow-Methods"
	RequestMethodHeader    = "Access-Control-Request-Method"
	AllowCredentialsHeader = "Access-Control-Allow-Credentials"
	ExposeHeadersHeader    = "Access-Control-Expose-Headers"
	MaxAgeHeader           = "Access-Control-Max-Age"
	Separator              = ", "
)

// Cors configures CORS response headers; AllowOrigins also drives Origin validation
type Cors struct {
	AllowCredentials *bool    `yaml:"AllowCredentials,omitempty" json:"allowCredentials,omitempty"`
	AllowHeaders     []string `yaml:"AllowHeaders,omitempty" json:"allowHeaders,omitempty"`
	AllowMethods     []string `yaml:"AllowMethods,omitempty" json:"allowMethods,omitempty"`
	AllowOrigins     []string `yaml:"AllowOrigins,omitempty" json:"allowOrigins,omitempty"`
	ExposeHeaders    []string `yaml:"ExposeHeaders,omitempty" json:"exposeHeaders,omitempty"`
	MaxAge           *int64   `yaml:"MaxAge,omitempty" json:"maxAge,omitempty"`
}

// LocalCors allows browser clients served from localhost
func LocalCors() *Cors {
	allowCredentials := false
	return &Cors{
		AllowCredentials: &allowCredentials,
		AllowHeaders:     []string{"Content-Type", protocolVersionHeader, "Mcp-Session-Id"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowOrigins:     []string{"http://localhost", "http://127.0.0.1"},
		ExposeHeaders:    []string{protocolVersionHeader, "Mcp-Session-Id"},
	}
}

type corsHandler struct {
	*Cors
}

func (h *corsHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Cors.setHeaders(w, r)
		next.ServeHTTP(w, r)
	})
}

func (c *Cors) setHeaders(writer http.ResponseWriter, request *http.Request) {
	if c == nil {
		return
	}
	header := writer.Header()
	origin := request.Header.Get("Origin")
	allowed := originSet(c.AllowOrigins)
	switch {
	case allowed["*"] && origin == "":
		header.Set(AllowOriginHeader, "*")
	case origin != "" && originAllowed(allowed, origin):
		header.Set(AllowOriginHeader, origin)
	}
	if len(c.AllowMethods) > 0 {
		header.Set(AllowMethodsHeader, strings.Join(c.AllowMethods, Separator))
	}
	if request.Method == http.MethodOptions {
		if requestMethod := request.Header.Get(RequestMethodHeader); requestMethod != "" && len(c.AllowMethods) == 0 {
			header.Set(AllowMethodsHeader, requestMethod)
		}
	}
	if len(c.AllowHeaders) > 0 {
		header.Set(AllowHeadersHeader, strings.Join(c.AllowHeaders, Separator))
	}
	if c.AllowCredentials != nil {
		header.Set(AllowCredentialsHeader, strconv.FormatBool(*c.AllowCredentials))
	}
	if c.MaxAge != nil {
		header.Set(MaxAgeHeader, strconv.FormatInt(*c.MaxAge, 10))
	}
	if len(c.ExposeHeaders) > 0 {
		header.Set(ExposeHeadersHeader, strings.Join(c.ExposeHeaders, Separator))
	}
}
