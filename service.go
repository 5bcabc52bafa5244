package credman

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/credman/server"
	"github.com/viant/credman/service"
	"github.com/viant/credman/store"
)

const (
	// Name is the MCP implementation name
	Name = "Credential Manager"
	// Version is the MCP implementation version
	Version = "0.1.0"
)

// NewService opens the store described by options and builds the MCP service
func NewService(options *Options, logger *zerolog.Logger) (*service.Service, error) {
	if options == nil {
		return nil, fmt.Errorf("options were nil")
	}
	options.Init()
	credentials, err := store.Open(&store.Config{
		Path:     options.File,
		ReadOnly: options.ReadOnly(),
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	return service.New(credentials, service.WithLogger(logger))
}

// NewServer creates an MCP server for the service
func NewServer(srv *service.Service, options *Options, logger *zerolog.Logger) (*server.Server, error) {
	if srv == nil {
		return nil, fmt.Errorf("service was nil")
	}
	if options == nil {
		options = &Options{}
	}
	options.Init()
	serverOptions := []server.Option{
		server.WithNewHandler(srv.NewHandler()),
		server.WithImplementation(schema.Implementation{Name: Name, Version: Version}),
		server.WithLoggerName("credman"),
		server.WithLogger(logger),
		server.WithInstructions(fmt.Sprintf("Credential store in %v mode; read %v for usage.", srv.Mode(), service.HelpURI)),
		server.WithEndpointAddress(options.Address),
		server.WithStreamableHTTP(options.Transport == TransportStreamable),
		server.WithRootRedirect(true),
	}
	if options.ProtocolVersion != "" {
		serverOptions = append(serverOptions, server.WithProtocolVersion(options.ProtocolVersion))
	}
	if options.SSEURI != "" {
		serverOptions = append(serverOptions, server.WithSSEURI(options.SSEURI))
	}
	if options.SSEMessageURI != "" {
		serverOptions = append(serverOptions, server.WithSSEMessageURI(options.SSEMessageURI))
	}
	if options.StreamableURI != "" {
		serverOptions = append(serverOptions, server.WithStreamableURI(options.StreamableURI))
	}
	cors := options.Cors
	if cors == nil {
		cors = server.LocalCors()
	}
	serverOptions = append(serverOptions, server.WithCORS(cors))
	return server.New(serverOptions...)
}
