// Package server wires handlers, middleware and routes, and runs the HTTP server.
//
// ROUTES:
//
//	GET    /healthz                → liveness + database ping
//	GET    /metrics                → Prometheus scrape endpoint
//	POST   /auth/login             → operator login (only when auth is configured)
//	POST   /auth/logout            → clear the session cookie
//	GET    /api/languages          → supported language tags
//	POST   /api/execute            → compile and run code            [auth]
//	GET    /api/files              → saved filenames
//	GET    /api/files/{filename}   → load one file
//	POST   /api/files              → save (upsert) a file            [auth]
//	DELETE /api/files/{filename}   → delete a file                   [auth]
//
// [auth] routes require the session cookie when an AuthService is supplied and are
// open otherwise.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/polyglot-playground/internal/auth"
	"github.com/sakif/polyglot-playground/internal/executor"
	"github.com/sakif/polyglot-playground/internal/handler"
	"github.com/sakif/polyglot-playground/internal/middleware"
	"github.com/sakif/polyglot-playground/internal/service"
)

// Executor is what the server needs from the execution engine. *local.Dispatcher satisfies it.
type Executor interface {
	executor.Executor
	Languages() []string
	LanguageForFilename(filename string) (string, bool)
}

// Pinger reports database health.
type Pinger interface {
	Ping() error
}

// Config holds server settings.
type Config struct {
	Port int
	// ExecutionTimeout is the per-process limit. The HTTP write timeout is derived from it
	// so a slow compile plus a slow run still gets its response written.
	ExecutionTimeout time.Duration
	// SecureCookies marks the session cookie Secure (HTTPS only).
	SecureCookies bool
	// ShutdownTimeout bounds how long in-flight requests may take to finish.
	ShutdownTimeout time.Duration
}

// Dependencies are the collaborators built by the caller.
type Dependencies struct {
	Executor Executor
	Files    *service.FileService
	DB       Pinger
	// Auth is nil when authentication is disabled.
	Auth *service.AuthService
	// Metrics serves /metrics; nil disables the route.
	Metrics http.Handler
}

// Server represents the HTTP server and its routes.
type Server struct {
	router *chi.Mux
	config Config
	deps   Dependencies
	logger *slog.Logger
}

// New builds the router. Nothing listens until Run.
func New(cfg Config, deps Dependencies, logger *slog.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		deps:   deps,
		logger: logger,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes registers middleware first: RequestID so the logger can print it,
// RealIP before anything reads RemoteAddr, Recoverer so a panic becomes a 500.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	if s.deps.Metrics != nil {
		s.router.Handle("/metrics", s.deps.Metrics)
	}

	protect := func(r chi.Router) {}
	if s.deps.Auth != nil {
		authHandler := handler.NewAuthHandler(s.deps.Auth, s.config.SecureCookies, s.logger)
		s.router.Post("/auth/login", authHandler.HandleLogin)
		s.router.Post("/auth/logout", authHandler.HandleLogout)

		protect = func(r chi.Router) {
			r.Use(auth.RequireAuth(s.deps.Auth.Tokens()))
		}
	} else {
		s.logger.Warn("authentication disabled: execute and file writes are open to anyone")
	}

	executeHandler := handler.NewExecuteHandler(s.deps.Executor, s.logger)
	fileHandler := handler.NewFileHandler(s.deps.Files, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/languages", handler.HandleLanguages(s.deps.Executor))
		r.Get("/files", fileHandler.HandleList)
		r.Get("/files/{filename}", fileHandler.HandleGet)

		r.Group(func(r chi.Router) {
			protect(r)
			r.Post("/execute", executeHandler.HandleExecute)
			r.Post("/files", fileHandler.HandleSave)
			r.Delete("/files/{filename}", fileHandler.HandleDelete)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.deps.DB != nil {
		if err := s.deps.DB.Ping(); err != nil {
			s.logger.Error("health check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Run serves on the configured port until ctx is cancelled, then shuts down
// gracefully: stop accepting connections and let in-flight requests finish.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("server: listening on port %d: %w", s.config.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*s.config.ExecutionTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", ln.Addr().String()))
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	}
}
