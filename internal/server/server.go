// Package server is the composition root: it wires the repository, service,
// and handler layers onto a chi router and owns the HTTP server lifecycle.
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

	"github.com/sakif/snippet-vault/internal/auth"
	"github.com/sakif/snippet-vault/internal/handler"
	"github.com/sakif/snippet-vault/internal/middleware"
	sqliteRepo "github.com/sakif/snippet-vault/internal/repository/sqlite"
	"github.com/sakif/snippet-vault/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration
}

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server: opens the database, assembles the dependency chain,
// and registers all routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
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

// setupRoutes configures middleware and route handlers.
//
// POST /register              → create account
// POST /login                 → issue access token
// GET  /snippets/             → list (auth, paginated)
// POST /snippets/             → create (auth)
// GET  /snippets/{id}/        → retrieve (auth)
// PUT/PATCH /snippets/{id}/   → update (auth, owner only)
// DELETE /snippets/{id}/      → delete (auth, owner only)
// GET  /tags/                 → list tags (public)
// GET  /tag_snippet/{tag_name}/ → snippets by tag (auth, paginated)
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(s.db, passwords, tokens, s.logger)
	snippetService := service.NewSnippetService(s.db, s.db, s.logger)
	tagService := service.NewTagService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger)
	tagHandler := handler.NewTagHandler(tagService, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Recover(s.logger))
	s.router.Use(middleware.Logger(s.logger))

	s.router.NotFound(handler.NotFoundHandler)
	s.router.MethodNotAllowed(handler.MethodNotAllowedHandler)

	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Post("/login", authHandler.HandleLogin)

	s.router.Get("/tags/", tagHandler.HandleList)

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/snippets/", snippetHandler.HandleList)
		r.Post("/snippets/", snippetHandler.HandleCreate)
		r.Get("/snippets/{id}/", snippetHandler.HandleGetByID)
		r.Put("/snippets/{id}/", snippetHandler.HandleUpdate)
		r.Patch("/snippets/{id}/", snippetHandler.HandleUpdate)
		r.Delete("/snippets/{id}/", snippetHandler.HandleDelete)

		r.Get("/tag_snippet/{tag_name}/", snippetHandler.HandleListByTag)
	})

	return nil
}

// Router exposes the configured router, used by httptest-based tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
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
