package api

import (
	"net/http"

	"github.com/Rrens/collabhub/internal/api/handler"
	customMiddleware "github.com/Rrens/collabhub/internal/api/middleware"
	"github.com/Rrens/collabhub/internal/config"
	"github.com/Rrens/collabhub/internal/realtime"
	"github.com/Rrens/collabhub/internal/repository/mongo"
	"github.com/Rrens/collabhub/internal/repository/redis"
	"github.com/Rrens/collabhub/internal/security"
	"github.com/Rrens/collabhub/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures the HTTP router. registry and rooms
// are the process-wide realtime state, shared with anything else that
// pushes to clients.
func NewRouter(cfg *config.Config, db *mongo.DB, redisClient *redis.Client, registry *realtime.Registry, rooms *realtime.Rooms) http.Handler {
	r := newBaseRouter(cfg)

	// Initialize security components
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	// Initialize repositories
	notificationRepo := mongo.NewNotificationRepository(db)
	chatRepo := mongo.NewChatRepository(db)
	commentRepo := mongo.NewCommentRepository(db)

	// Initialize rate limiter and chat cache
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)
	chatCache := redis.NewChatCache(redisClient, redis.DefaultChatCacheTTL)

	// Initialize services
	notificationService := service.NewNotificationService(notificationRepo, registry)
	chatService := service.NewChatService(chatRepo, rooms, notificationService, chatCache)
	commentService := service.NewCommentService(commentRepo, rooms)

	// Initialize handlers
	notificationHandler := handler.NewNotificationHandler(notificationService)
	chatHandler := handler.NewChatHandler(chatService)
	commentHandler := handler.NewCommentHandler(commentService)

	// Auth middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	mountRealtime(r, cfg.Realtime, authMiddleware, registry, rooms)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db, redisClient))

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimitMiddleware.Limit)

			r.Get("/realtime/stats", handler.RealtimeStats(registry, rooms))

			// Cache management
			r.Post("/cache/flush", handler.FlushCache(chatCache))

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Post("/", notificationHandler.Dispatch)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Patch("/read-all", notificationHandler.MarkAllAsRead)
				r.Patch("/{notificationID}/read", notificationHandler.MarkAsRead)
			})

			r.Route("/chats/{chatID}/messages", func(r chi.Router) {
				r.Get("/", chatHandler.ListMessages)
				r.Post("/", chatHandler.SendMessage)
			})

			r.Route("/tasks/{taskID}/comments", func(r chi.Router) {
				r.Get("/", commentHandler.List)
				r.Post("/", commentHandler.Add)
			})
		})
	})

	return r
}

// newBaseRouter applies the middleware shared by every route
func newBaseRouter(cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Realtime.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	return r
}

// mountRealtime serves websocket sessions at /ws. Sessions are long lived,
// so this route sits outside the request timeout.
func mountRealtime(r chi.Router, cfg config.RealtimeConfig, auth *customMiddleware.AuthMiddleware, registry *realtime.Registry, rooms *realtime.Rooms) {
	wsHandler := handler.NewWSHandler(realtime.NewGateway(registry, rooms), cfg)
	r.With(auth.AuthenticateUpgrade).Get("/ws", wsHandler.Serve)
}
