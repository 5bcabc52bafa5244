package credman

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/viant/credman/internal/logger"
)

// Run parses args and serves the credential store until the transport ends or the process is signalled
func Run(args []string) error {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Serve(ctx, options)
}

// Serve opens the store and exposes it over the configured transport
func Serve(ctx context.Context, options *Options) error {
	log := logger.Get()
	srv, err := NewService(options, log)
	if err != nil {
		return err
	}
	mcpServer, err := NewServer(srv, options, log)
	if err != nil {
		return err
	}
	log.Info().
		Str("mode", srv.Mode()).
		Str("store", srv.Store().Path()).
		Str("transport", options.Transport).
		Msg("starting credential manager")

	switch options.Transport {
	case TransportSSE, TransportStreamable:
		httpServer := mcpServer.HTTP(ctx, options.Address)
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
		}()
		log.Info().Str("address", httpServer.Addr).Msg("listening")
		if err = httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return mcpServer.Stdio(ctx).ListenAndServe()
	}
}
