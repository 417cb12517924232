package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/codepairhq/codepair/internal/api/handler"
	customMiddleware "github.com/codepairhq/codepair/internal/api/middleware"
	"github.com/codepairhq/codepair/internal/config"
	"github.com/codepairhq/codepair/internal/repository/mongo"
	"github.com/codepairhq/codepair/internal/repository/redis"
	"github.com/codepairhq/codepair/internal/security"
	"github.com/codepairhq/codepair/internal/service"
	"github.com/codepairhq/codepair/internal/stream"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *mongo.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Security components
	tokenManager := security.NewTokenManager(
		cfg.Auth.AccessSecret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	// Repositories
	userRepo := mongo.NewUserRepository(db)
	sessionRepo := mongo.NewSessionRepository(db)

	// Redis-backed components
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)
	sessionCache := redis.NewSessionCache(redisClient)

	// External chat/video collaborator
	streamClient := stream.NewClient(cfg.Stream)

	// Services
	authService := service.NewAuthService(userRepo, tokenManager)
	sessionService := service.NewSessionService(sessionRepo, streamClient, sessionCache)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	streamHandler := handler.NewStreamHandler(streamClient)

	// Middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(tokenManager, userRepo)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh-token", authHandler.Refresh)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Post("/logout", authHandler.Logout)
				r.Post("/logout-all", authHandler.LogoutAll)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimitMiddleware.Limit)

			// Chat/video SDK tokens
			r.Get("/chat/token", streamHandler.ChatToken)
			r.Get("/video/token", streamHandler.VideoToken)

			// Session routes
			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", sessionHandler.Create)
				r.Get("/active", sessionHandler.ListActive)
				r.Get("/my-recent", sessionHandler.ListMyRecent)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", sessionHandler.Get)
					r.Post("/join", sessionHandler.Join)
					r.Post("/leave", sessionHandler.Leave)
					r.Post("/end", sessionHandler.End)
				})
			})
		})
	})

	return r
}
