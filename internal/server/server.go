// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer — the composition root that connects
// handlers, middleware, and routes. It decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go loads the config and creates the (optional) sandbox runner, then:
//   Server.New() creates: sqlite.DB → services → handlers → routes
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services, and nothing below the handler layer
// knows about HTTP.
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

	"github.com/sakif/codementor/internal/auth"
	"github.com/sakif/codementor/internal/config"
	"github.com/sakif/codementor/internal/handler"
	"github.com/sakif/codementor/internal/middleware"
	sqliteRepo "github.com/sakif/codementor/internal/repository/sqlite"
	"github.com/sakif/codementor/internal/sandbox"
	"github.com/sakif/codementor/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection. When the server shuts down we
// must close it to flush any pending writes and release the file lock.
// The sandbox runner is created (and closed) by main, since it may be nil.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server from the loaded config. runner may be nil — the
// automated-review endpoints then report the feature as unavailable.
func New(cfg *config.Config, logger *slog.Logger, runner sandbox.Runner) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(runner); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes assembles the full dependency chain and mounts every route.
//
// ROUTE STRUCTURE:
//
//	POST   /api/auth/register            → create account + profile, set cookie
//	POST   /api/auth/login               → password login
//	POST   /api/auth/logout              → clear session cookie
//	GET    /auth/github/login            → redirect to GitHub OAuth
//	GET    /auth/github/callback         → complete GitHub OAuth
//	GET    /api/me                       → current user            [auth]
//	GET    /api/snippets                 → list snippets
//	POST   /api/snippets                 → submit snippet          [auth]
//	GET    /api/snippets/{id}            → get snippet (counts view)
//	PUT    /api/snippets/{id}            → edit snippet            [auth]
//	DELETE /api/snippets/{id}            → delete snippet          [auth]
//	GET    /api/snippets/{id}/reviews    → list reviews
//	POST   /api/snippets/{id}/reviews    → post community review   [auth]
//	POST   /api/snippets/{id}/autoreview → run sandbox AI review   [auth]
//	GET    /api/snippets/{id}/comments   → list comments
//	POST   /api/snippets/{id}/comments   → post comment            [auth]
//	POST   /api/reviews/{id}/vote        → cast/replace vote       [auth]
//	DELETE /api/reviews/{id}/vote        → retract vote            [auth]
//	GET    /api/profile                  → own profile + badges    [auth]
//	PUT    /api/profile                  → edit profile            [auth]
//	GET    /api/users/{id}/profile       → public profile
//	GET    /api/dashboard                → dashboard aggregate     [auth]
//	GET    /api/badges                   → badge catalog
func (s *Server) setupRoutes(runner sandbox.Runner) error {
	// === Global Middleware ===
	// Middleware executes in the order it's added:
	// RequestID → RealIP → Recoverer → our structured logger.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === Auth plumbing ===
	tokenTTL := time.Duration(s.config.Auth.TokenExpiryMin) * time.Minute
	tokens, err := auth.NewTokenService(s.config.Auth.JWTSecret, tokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	// GitHub login is optional — without credentials the routes answer 503.
	var github *auth.GitHubProvider
	if s.config.GitHub.ClientID != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHub.ClientID,
			s.config.GitHub.ClientSecret,
			s.config.GitHub.CallbackURL,
		)
	} else {
		s.logger.Warn("GitHub OAuth not configured — GitHub login disabled")
	}

	// === Services ===
	// s.db implements every repository interface; each service receives only
	// the interfaces it needs.
	accountService := service.NewAccountService(s.db, s.db, tokens, passwords, s.logger)
	snippetService := service.NewSnippetService(s.db, s.db, s.logger)
	reviewService := service.NewReviewService(s.db, s.db, s.db, s.db, s.logger)
	commentService := service.NewCommentService(s.db, s.db, s.logger)
	profileService := service.NewProfileService(s.db, s.db, s.db, s.db, s.logger)
	autoReviewService := service.NewAutoReviewService(runner, reviewService, s.db, s.logger)

	// === Handlers ===
	authHandler := handler.NewAuthHandler(accountService, github, tokens.TTL(), s.config.Auth.SecureCookies, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger)
	reviewHandler := handler.NewReviewHandler(reviewService, autoReviewService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	profileHandler := handler.NewProfileHandler(profileService, s.logger)

	// === OAuth Routes (outside /api — they're browser navigations) ===
	s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
	s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)

	// === API Routes ===
	s.router.Route("/api", func(r chi.Router) {
		// Public routes — no token required.
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", authHandler.HandleRegister)
			r.Post("/auth/login", authHandler.HandleLogin)
			r.Post("/auth/logout", authHandler.HandleLogout)

			r.Get("/snippets", snippetHandler.HandleList)
			r.Get("/snippets/{id}", snippetHandler.HandleGetByID)
			r.Get("/snippets/{id}/reviews", reviewHandler.HandleListBySnippet)
			r.Get("/snippets/{id}/comments", commentHandler.HandleListBySnippet)

			r.Get("/users/{id}/profile", profileHandler.HandleGetByUser)
			r.Get("/badges", profileHandler.HandleListBadges)
		})

		// Protected routes — RequireAuth validates the JWT cookie and puts
		// the userID in the request context.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)

			r.Post("/snippets", snippetHandler.HandleCreate)
			r.Put("/snippets/{id}", snippetHandler.HandleUpdate)
			r.Delete("/snippets/{id}", snippetHandler.HandleDelete)

			r.Post("/snippets/{id}/reviews", reviewHandler.HandleCreate)
			r.Post("/snippets/{id}/autoreview", reviewHandler.HandleAutoReview)
			r.Post("/snippets/{id}/comments", commentHandler.HandleCreate)

			r.Post("/reviews/{id}/vote", reviewHandler.HandleVote)
			r.Delete("/reviews/{id}/vote", reviewHandler.HandleUnvote)

			r.Get("/profile", profileHandler.HandleGetOwn)
			r.Put("/profile", profileHandler.HandleUpdate)
			r.Get("/dashboard", profileHandler.HandleDashboard)
		})
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.config.Server.Addr,
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
			slog.String("addr", s.config.Server.Addr),
			slog.String("database", s.config.Database.Path),
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
