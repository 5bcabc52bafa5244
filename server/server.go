package server

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
	"github.com/viant/mcp-protocol/syncmap"
	"github.com/viant/credman/internal/logger"
)

// Server represents MCP protocol handler
type Server struct {
	info              schema.Implementation
	newSessionHandler protoserver.NewHandler
	logger            *zerolog.Logger

	instructions    *string
	protocolVersion string
	loggerName      string

	stdioServer
	httpServer
}

// NewHandler creates a new handler instance
func (s *Server) NewHandler(ctx context.Context, transport transport.Transport) transport.Handler {
	return s.newHandler(ctx, transport)
}

func (s *Server) newHandler(ctx context.Context, transport transport.Transport) *Handler {
	ret := &Handler{
		Server:         s,
		Notifier:       transport,
		client:         NewClient(transport),
		activeContexts: syncmap.NewMap[int, *activeContext](),
	}
	ret.Logger = NewLogger(s.loggerName, &ret.loggingLevel, transport)
	ret.handler, ret.err = s.newSessionHandler(ctx, transport, ret.Logger, ret.client)
	if ret.err != nil {
		s.logger.Error().Err(ret.err).Msg("failed to create session handler")
	}
	return ret
}

// New creates a new Server instance
func New(options ...Option) (*Server, error) {
	s := &Server{
		info: schema.Implementation{
			Name:    "MCP",
			Version: "0.1",
		},
		loggerName:      "server",
		protocolVersion: schema.LatestProtocolVersion,
		logger:          logger.Get(),
	}
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}
	if s.newSessionHandler == nil {
		return nil, errors.New("no handler specified")
	}
	return s, nil
}
