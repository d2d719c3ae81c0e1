// Package httptransport builds and runs the API's http.Server.
package httptransport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"example.com/lifetrack/internal/logger"
)

// ServerConfig contains tunables for the HTTP server.
type ServerConfig struct {
	Address       string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	ShutdownGrace time.Duration
}

// NewServer creates *http.Server with provided handler.
func NewServer(cfg ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down within the
// grace period.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, grace time.Duration, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if grace <= 0 {
		grace = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
