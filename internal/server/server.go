// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer: it decides which URL patterns map to
// which handlers, what middleware runs where, and how the server starts
// and stops.
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go:     config.Load() → server.Config
//	server.New:  sqlite.DB → TokenService/PasswordService
//	             → AuthService/TodoService → AuthHandler/TodoHandler → routes
//
// All dependencies are wired here (the "composition root") rather than
// scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/todo-api/internal/auth"
	"github.com/sakif/todo-api/internal/config"
	"github.com/sakif/todo-api/internal/handler"
	"github.com/sakif/todo-api/internal/middleware"
	sqliteRepo "github.com/sakif/todo-api/internal/repository/sqlite"
	"github.com/sakif/todo-api/internal/seed"
	"github.com/sakif/todo-api/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection. Start closes it during graceful
// shutdown; callers that never call Start (tests) must call Close.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, builds every service and handler, and registers
// the routes. If cfg.SeedDemoData is set the demo accounts are loaded
// before the server accepts traffic.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo so it is not confused with
// the modernc.org/sqlite driver.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiration)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	passwords, err := auth.NewPasswordService(cfg.BcryptCost)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating password service: %w", err)
	}

	if cfg.SeedDemoData {
		if err := seed.Load(context.Background(), db, passwords, logger); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	authService := service.NewAuthService(db, tokens, passwords, logger)
	todoService := service.NewTodoService(db, logger)

	s.setupRoutes(
		tokens,
		handler.NewAuthHandler(authService, logger),
		handler.NewTodoHandler(todoService, logger),
	)

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST   /api/auth/register        → register (public)
// POST   /api/auth/login           → login (public)
// GET    /api/auth/health          → liveness (public)
// GET    /api/auth/me              → current user
// GET    /api/todos                → list (?completed=true|false)
// POST   /api/todos                → create
// GET    /api/todos/count          → count
// GET    /api/todos/{id}           → get
// PUT    /api/todos/{id}           → replace (title required)
// PATCH  /api/todos/{id}           → partial update
// DELETE /api/todos/{id}           → delete
// PATCH  /api/todos/{id}/toggle    → flip completed
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID    assigns an id used by the request logger
//  2. RealIP       client IP from proxy headers
//  3. Logger       one line per request
//  4. Recoverer    panics become 500s
//  5. CORS         only on /api; answers preflights before auth runs
//  6. Authenticate binds the principal if a valid Bearer token is present
//  7. RequireAuth  only on the non-public group
func (s *Server) setupRoutes(tokens *auth.TokenService, authHandler *handler.AuthHandler, todoHandler *handler.TodoHandler) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(s.config.FrontendURL))
		r.Use(auth.Authenticate(tokens, s.logger))

		// Public
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/auth/health", authHandler.Health)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(handler.Unauthenticated(s.logger)))

			r.Get("/auth/me", authHandler.Me)

			r.Route("/todos", func(r chi.Router) {
				r.Get("/", todoHandler.List)
				r.Post("/", todoHandler.Create)
				r.Get("/count", todoHandler.Count)
				r.Get("/{id}", todoHandler.Get)
				r.Put("/{id}", todoHandler.Replace)
				r.Patch("/{id}", todoHandler.Update)
				r.Delete("/{id}", todoHandler.Delete)
				r.Patch("/{id}/toggle", todoHandler.Toggle)
			})
		})
	})
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database connection.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new connections
//  2. Wait up to 30s for in-flight requests to finish
//  3. Close the database (flushes WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
