// Package server provides a configurable MCP server.
//
// Each client session gets a Handler that decodes JSON-RPC requests into
// github.com/viant/mcp-protocol/schema types and dispatches them to the
// mcp-protocol server.Handler created for that session. Request cancellation
// is scoped to the session. The server can be exposed over:
//   - STDIO
//   - HTTP, with SSE and streamable transports mounted side by side
//
// HTTP requests pass through protocol version, CORS and Origin middleware.
//
//	s, _ := server.New(server.WithNewHandler(protoserver.WithDefaultHandler(ctx)))
//	_ = s.Stdio(ctx).ListenAndServe()
package server
