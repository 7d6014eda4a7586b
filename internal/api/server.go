package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/naxonsolutions/pdcheck/internal/domain"
)

// Server is the HTTP server for the planning check API.
type Server struct {
	cfg     domain.ServerConfig
	router  chi.Router
	httpSrv *http.Server
}

// NewServer creates the HTTP server and mounts all routes.
func NewServer(cfg domain.ServerConfig, handler *Handler, tracingEnabled bool) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Recover)
	if tracingEnabled {
		r.Use(Tracing)
	}
	r.Use(Logging)
	r.Use(CORS)
	r.Use(middleware.Compress(5))

	r.Get("/health", handler.Health)
	r.Get("/ready", handler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/check", handler.Check)
		r.Get("/checks", handler.ListChecks)
		r.Get("/checks/{id}", handler.GetCheck)

		r.Get("/rules", handler.ListRules)
		r.Post("/rules", handler.CreateRule)
		r.Delete("/rules/{id}", handler.DeleteRule)
		r.Post("/rules/reload", handler.ReloadRules)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}

	return &Server{
		cfg:     cfg,
		router:  r,
		httpSrv: srv,
	}
}

// Router exposes the chi router, mainly for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	slog.Info("http server starting", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("http server shutting down")
	return s.httpSrv.Shutdown(ctx)
}
