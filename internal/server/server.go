// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: the database, token and password services,
// the auth service, and the handlers are all constructed and wired here.
// Nothing else in the codebase creates its own dependencies.
//
// Dependency chain:
//
//	config → sqlite.DB → AuthService → AuthHandler → routes
//	       ↘ TokenService (shared by AuthService and RequireAuth)
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/credcloud/credcloud-server/internal/auth"
	"github.com/credcloud/credcloud-server/internal/config"
	"github.com/credcloud/credcloud-server/internal/handler"
	"github.com/credcloud/credcloud-server/internal/middleware"
	sqliteRepo "github.com/credcloud/credcloud-server/internal/repository/sqlite"
	"github.com/credcloud/credcloud-server/internal/service"
)

// Server owns the router and the resources that must be torn down on
// shutdown (the database connection).
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with the full dependency graph wired.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and the route table.
//
// Route structure (under the /api/v1/auth prefix):
//
//	POST /signup                    → register account + questions
//	POST /signin-password           → password signin, sets token cookie
//	POST /logout                    → clears token cookie
//	GET  /auth-questions/{username} → recovery questions (session required)
//
// Middleware order: RequestID and RealIP run first so the logger can use
// them, Recoverer turns panics into 500s, then CORS, then request logging.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)

	// The frontend is served from a different origin and authenticates via
	// the token cookie, so credentials must be allowed.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.logger, s.config.IsDevelopment())

	// Landing route so hitting the bare server in a browser shows something.
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<h1 style="text-align: center;">CredCloud's Server is up and running!!</h1>`)
	})

	s.router.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/signin-password", authHandler.HandleSigninPassword)
		r.Post("/logout", authHandler.HandleLogout)

		// Protected: only a signed-in user may fetch recovery questions.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/auth-questions/{username}", authHandler.HandleAuthQuestions)
		})
	})

	return nil
}

// Handler exposes the router, mainly for tests that drive the full stack
// through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases server-owned resources without serving. Start does this
// itself; Close exists for callers (tests) that never call Start.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server and blocks until shutdown.
//
// Graceful shutdown: on SIGINT/SIGTERM, stop accepting connections, give
// in-flight requests 30 seconds to finish, then close the database.
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
			slog.String("environment", s.config.Environment),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
