package api

import (
	"net/http"

	"github.com/Rrens/estate-chat/internal/api/handler"
	customMiddleware "github.com/Rrens/estate-chat/internal/api/middleware"
	"github.com/Rrens/estate-chat/internal/config"
	"github.com/Rrens/estate-chat/internal/llm"
	"github.com/Rrens/estate-chat/internal/security"
	"github.com/Rrens/estate-chat/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps are the services behind the HTTP API.
type Deps struct {
	AuthService *service.AuthService
	ChatService *service.ChatService
	JWTManager  *security.JWTManager
	Providers   *llm.Router
	Limiter     customMiddleware.Limiter
	SchemaCache handler.CacheFlusher // nil when Redis is disabled
	Ready       map[string]handler.Pinger
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Server.MiddlewareTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	limiter := deps.Limiter
	if limiter == nil {
		limiter = customMiddleware.NewLocalLimiter(
			cfg.Security.RateLimit.RequestsPerMinute,
			cfg.Security.RateLimit.Burst,
		)
	}

	authHandler := handler.NewAuthHandler(deps.AuthService)
	chatHandler := handler.NewChatHandler(deps.ChatService)

	authMiddleware := customMiddleware.NewAuthMiddleware(deps.JWTManager)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(limiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(deps.Ready))
		r.Get("/llm-providers", handler.ListLLMProviders(deps.Providers))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimitMiddleware.Limit)

			r.Get("/me", authHandler.Me)
			r.Post("/cache/flush", handler.FlushCache(deps.SchemaCache))

			r.Route("/chat", func(r chi.Router) {
				r.Get("/", chatHandler.Overview)
				r.Post("/turns", chatHandler.SubmitTurn)

				r.Route("/sessions", func(r chi.Router) {
					r.Get("/", chatHandler.ListSessions)
					r.Post("/", chatHandler.CreateSession)

					r.Route("/{sessionID}", func(r chi.Router) {
						r.Get("/summary", chatHandler.Summary)
						r.Get("/messages", chatHandler.Messages)
						r.Delete("/", chatHandler.DeleteSession)
					})
				})
			})
		})
	})

	return r
}
