package api

import (
	"context"
	"net/http"
	"time"

	"migration-scorer/internal/api/mw"
	"migration-scorer/pkg/logger"
)

// Server wraps the chi router in an http.Server: Start runs until Shutdown
// is called or the listener fails.
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer builds a Server bound to addr.
func NewServer(addr string, a *API, log *logger.Logger) *Server {
	log = log.With("http_server")
	router := BuildRouter(a, mw.NewLogging(log), mw.NewGzip(0, log))

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 0, // SSE streams are long-lived; no fixed write deadline
			IdleTimeout:  120 * time.Second,
		},
		log: log,
	}
}

// Start blocks serving HTTP until the listener fails or Shutdown is called,
// in which case it returns nil.
func (s *Server) Start() error {
	s.log.Info("http server listening", logger.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests (bounded by ctx) and closes the
// listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
