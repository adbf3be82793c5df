// Package server runs an http.Handler with timeouts and graceful shutdown.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Timeouts bounds connection phases and shutdown draining
type Timeouts struct {
	Read     time.Duration
	Write    time.Duration
	Idle     time.Duration
	Shutdown time.Duration
}

// GracefulServer wraps an HTTP server with graceful shutdown capabilities
type GracefulServer struct {
	server   *http.Server
	shutdown time.Duration
	log      zerolog.Logger
}

// New creates a graceful HTTP server listening on addr
func New(addr string, handler http.Handler, t Timeouts, log zerolog.Logger) *GracefulServer {
	return &GracefulServer{
		server: &http.Server{
			Addr:           addr,
			Handler:        handler,
			ReadTimeout:    t.Read,
			WriteTimeout:   t.Write,
			IdleTimeout:    t.Idle,
			MaxHeaderBytes: 1 << 20,
		},
		shutdown: t.Shutdown,
		log:      log,
	}
}

// Run listens on the configured address and serves until ctx is cancelled
func (gs *GracefulServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		return err
	}
	return gs.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests for at most the shutdown timeout.
func (gs *GracefulServer) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		gs.log.Info().Str("addr", ln.Addr().String()).Msg("starting HTTP server")
		errCh <- gs.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	gs.log.Info().Dur("timeout", gs.shutdown).Msg("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gs.shutdown)
	defer cancel()

	if err := gs.server.Shutdown(shutdownCtx); err != nil {
		gs.log.Error().Err(err).Msg("error during shutdown")
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	gs.log.Info().Msg("server shutdown complete")
	return nil
}
