package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/direct-boost/internal/boostapi"
	"github.com/ignite/direct-boost/internal/config"
	"github.com/ignite/direct-boost/internal/store"
)

// Server is the wizard HTTP API server.
type Server struct {
	config   config.ServerConfig
	handler  http.Handler
	handlers *Handlers
	server   *http.Server
}

// NewServer creates the wizard API server.
func NewServer(cfg *config.Config, st *store.Store, engine *boostapi.Client) *Server {
	handlers := NewHandlers(st, engine, cfg.Wizard)
	router := SetupRoutes(handlers, cfg.Server.AllowedOrigins)

	return &Server{
		config:   cfg.Server,
		handler:  router,
		handlers: handlers,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// File uploads can be large spreadsheets; generation calls are slow.
		ReadTimeout:       2 * time.Minute,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the configured router, for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}
