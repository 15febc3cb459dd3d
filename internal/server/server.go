// Package server is the composition root: it wires the repository,
// service and handler layers, declares every route, and runs the HTTP
// server with graceful shutdown. main stays minimal; everything the
// server needs arrives through config.Config.
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
	"github.com/redis/go-redis/v9"

	"github.com/tasnim/travelmate/internal/auth"
	"github.com/tasnim/travelmate/internal/cache"
	"github.com/tasnim/travelmate/internal/config"
	"github.com/tasnim/travelmate/internal/handler"
	"github.com/tasnim/travelmate/internal/mail"
	"github.com/tasnim/travelmate/internal/middleware"
	sqliteRepo "github.com/tasnim/travelmate/internal/repository/sqlite"
	"github.com/tasnim/travelmate/internal/service"
)

// Server owns the router and the resources that need closing on shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency graph. Each layer receives only what
// it needs: services get repository interfaces, handlers get services.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTResetSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(tokens)
	return s, nil
}

func (s *Server) setupRoutes(tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Search results are cached in Redis when configured; the no-op cache
	// keeps the same code path when it isn't.
	var searchCache cache.Cache = cache.NewNoop()
	if s.cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     s.cfg.RedisAddr,
			Password: s.cfg.RedisPass,
			DB:       s.cfg.RedisDB,
		})
		searchCache = cache.NewRedis(client)
		s.logger.Info("search cache enabled", slog.String("redis", s.cfg.RedisAddr))
	}

	users := s.db.Users()
	itineraries := s.db.Itineraries()
	messages := s.db.Messages()

	passwords := auth.NewPasswordService()
	mailer := mail.NewLogMailer(s.logger)

	userService := service.NewUserService(users, tokens, passwords, mailer, s.logger)
	itineraryService := service.NewItineraryService(itineraries, s.logger)
	searchService := service.NewSearchService(itineraries, users, messages, searchCache, s.logger)
	connectService := service.NewConnectService(messages, users, s.logger)
	profileService := service.NewProfileService(users, itineraries, messages, s.logger)

	userHandler := handler.NewUserHandler(userService, s.cfg.IsProd)
	itineraryHandler := handler.NewItineraryHandler(itineraryService)
	searchHandler := handler.NewSearchHandler(searchService)
	connectHandler := handler.NewConnectHandler(connectService)
	profileHandler := handler.NewProfileHandler(profileService)

	// Public routes.
	s.router.Post("/user", userHandler.Register)
	s.router.Post("/user/login", userHandler.Login)
	s.router.Post("/user/forgot-password", userHandler.ForgotPassword)
	s.router.Post("/user/reset-password", userHandler.ResetPassword)

	// GitHub sign-in mounts only when credentials are configured.
	if s.cfg.GitHubEnabled() {
		callback := s.cfg.GitHubCallbackURL
		if callback == "" {
			callback = fmt.Sprintf("http://localhost:%s/auth/github/callback", s.cfg.Port)
		}
		github := auth.NewGitHubProvider(s.cfg.GitHubClientID, s.cfg.GitHubClientSecret, callback)
		oauthHandler := handler.NewOAuthHandler(github, userService, s.logger, s.cfg.IsProd)
		s.router.Get("/auth/github/login", oauthHandler.Login)
		s.router.Get("/auth/github/callback", oauthHandler.Callback)
		s.router.Post("/auth/logout", oauthHandler.Logout)
		s.logger.Info("GitHub sign-in enabled")
	}

	// Authenticated routes.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/user/me", userHandler.Me)
		r.Delete("/user", userHandler.Delete)

		r.Get("/itinerary", itineraryHandler.List)
		r.Post("/itinerary", itineraryHandler.Create)
		r.Patch("/itinerary/{id}", itineraryHandler.Update)
		r.Delete("/itinerary/{id}", itineraryHandler.Delete)

		r.Get("/search", searchHandler.Search)

		r.Get("/profile/{id}", profileHandler.Get)
		r.Patch("/profile/{id}", profileHandler.Update)

		r.Post("/connects", connectHandler.Send)
		r.Get("/connects", connectHandler.List)

		r.Group(func(admin chi.Router) {
			admin.Use(auth.RequireAdmin)
			admin.Get("/admin/users", userHandler.ListUsers)
		})
	})
}

// Router exposes the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
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
			slog.String("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
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
