// Package http serves the operational endpoints: Prometheus metrics and a
// health probe.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/bft-labs/aisdecoder/internal/ports"
)

const (
	// MetricsPath is where the scrape handler is mounted.
	MetricsPath = "/metrics"

	// HealthPath answers 200 while healthy() reports true and 503 otherwise.
	HealthPath = "/healthz"

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server is the operational HTTP server.
type Server struct {
	addr    string
	server  *http.Server
	logger  ports.Logger
	healthy func() bool
}

// NewServer creates a server on addr. healthy may be nil.
func NewServer(addr string, metrics http.Handler, healthy func() bool, logger ports.Logger) *Server {
	s := &Server{
		addr:    addr,
		logger:  logger,
		healthy: healthy,
	}

	mux := http.NewServeMux()
	mux.Handle(MetricsPath, metrics)
	mux.HandleFunc(HealthPath, s.health)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	if s.healthy != nil && !s.healthy() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run listens on the configured address until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(ln)
	}()

	s.logger.Info("metrics server listening", ports.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
