package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/mcp-protocol/client"
	protologger "github.com/viant/mcp-protocol/logger"
	protoserver "github.com/viant/mcp-protocol/server"
	"github.com/viant/credman/internal/logger"
	"github.com/viant/credman/store"
)

// DefaultPollInterval is how often a subscribed session checks the store file
const DefaultPollInterval = 2 * time.Second

type (
	// Service exposes one store to every MCP session
	Service struct {
		store        *store.Store
		pollInterval time.Duration
		logger       *zerolog.Logger
	}

	// Option configures a Service
	Option func(s *Service)
)

// WithPollInterval sets the store file poll interval used by resource subscriptions
func WithPollInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.pollInterval = interval
		}
	}
}

// WithLogger sets the process logger
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store returns the underlying store
func (s *Service) Store() *store.Store {
	return s.store
}

// NewHandler returns a factory creating one Implementer per MCP session
func (s *Service) NewHandler() protoserver.NewHandler {
	return func(ctx context.Context, notifier transport.Notifier, logger protologger.Logger, client client.Operations) (protoserver.Handler, error) {
		ret := &Implementer{
			DefaultHandler: protoserver.NewDefaultHandler(notifier, logger, client),
			service:        s,
			ctx:            ctx,
		}
		if err := ret.registerTools(); err != nil {
			return nil, err
		}
		ret.registerResources()
		return ret, nil
	}
}

// New creates a service; tools are registered according to the store mode
func New(credentials *store.Store, options ...Option) (*Service, error) {
	if credentials == nil {
		return nil, fmt.Errorf("store was nil")
	}
	ret := &Service{
		store:        credentials,
		pollInterval: DefaultPollInterval,
		logger:       logger.Get(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret, nil
}
