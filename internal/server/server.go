// Package server wires handlers, middleware, and routes, and owns the
// process lifecycle: it opens the database at startup and closes it on
// graceful shutdown. All dependencies are assembled here, in the
// composition root, rather than scattered as package globals.
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

	"betpool-backend/internal/auth"
	"betpool-backend/internal/handler"
	"betpool-backend/internal/metrics"
	"betpool-backend/internal/middleware"
	sqliteRepo "betpool-backend/internal/repository/sqlite"
	"betpool-backend/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port        int
	DBPath      string
	JWTSecret   string
	UserInfoURL string // identity provider userinfo endpoint
}

// Server is the HTTP server and its dependencies. It owns the database
// handle; Start closes it on shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, builds the dependency graph, and registers all
// routes.
//
// The chain is: sqlite.DB implements the repository interfaces → services
// receive the interfaces → handlers receive the services. Handlers never
// touch the database; services never touch HTTP.
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

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return err
	}

	userInfoURL := s.config.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = auth.DefaultUserInfoURL
	}
	provider := auth.NewProvider(userInfoURL)

	authService := service.NewAuthService(s.db, tokens, provider, s.logger)
	poolService := service.NewPoolService(s.db, s.logger)
	guessService := service.NewGuessService(s.db, s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	poolHandler := handler.NewPoolHandler(poolService, s.logger)
	guessHandler := handler.NewGuessHandler(guessService, s.logger)

	recorder := metrics.NewRecorder()

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(recorder.Middleware())

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.router.Handle("/metrics", recorder.Handler())

	// Public endpoints.
	s.router.Post("/users", authHandler.HandleCreateUser)
	s.router.Get("/users/count", authHandler.HandleUserCount)
	s.router.Get("/pools/count", poolHandler.HandleCount)
	s.router.Get("/guesses/count", guessHandler.HandleCount)

	// Pool creation works with or without a caller identity: authenticated
	// creators become owners, anonymous creators leave the pool ownerless.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokens))
		r.Post("/pools", poolHandler.HandleCreate)
	})

	// Everything else requires a valid bearer token.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/me", authHandler.HandleMe)
		r.Post("/pools/join", poolHandler.HandleJoin)
		r.Get("/pools", poolHandler.HandleList)
		r.Get("/pools/{id}", poolHandler.HandleGetByID)
		r.Get("/pools/{id}/games", guessHandler.HandleListGames)
		r.Post("/pools/{poolId}/games/{gameId}/guesses", guessHandler.HandleSubmit)
	})

	return nil
}

// Router exposes the configured mux, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the database. Start does this itself on shutdown; tests
// that never call Start use Close directly.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the database.
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
