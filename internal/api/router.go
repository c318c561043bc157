package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/huddle/internal/api/middleware"
	"github.com/eldtechnologies/huddle/internal/handlers"
	"github.com/eldtechnologies/huddle/internal/store"
)

// RouterConfig holds the router's dependencies. Redis may be nil; rate
// limiting is skipped without it.
type RouterConfig struct {
	Store              store.DataStore
	Redis              *redis.Client
	SessionTTL         time.Duration
	RateLimitWhitelist []string
}

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(8 * 1024)) // 8KB max body
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting, only when Redis is around
	if cfg.Redis != nil {
		limiter := middleware.NewRateLimiter(cfg.Redis, logger, middleware.RateLimiterConfig{
			Whitelist: cfg.RateLimitWhitelist,
		})
		r.Use(limiter.Middleware)
	}

	// CORS - the SPA may be served from anywhere
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Create handler and auth middleware
	h := handlers.NewHandler(cfg.Store, cfg.Redis, cfg.SessionTTL)
	auth := middleware.NewAuthMiddleware(cfg.Store)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	// Authenticated routes (require bearer session token)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)

		r.Post("/rooms", h.CreateRoom)
		r.Get("/rooms", h.ListRooms)
		r.Post("/rooms/join", h.JoinRoom)
		r.Get("/rooms/{id}", h.GetRoom)
		r.Get("/rooms/{id}/options", h.ListOptions)
		r.Post("/rooms/{id}/options", h.CreateOption)
		r.Post("/rooms/{id}/vote", h.CastVote)
		r.Get("/rooms/{id}/ballot", h.Ballot)
		r.Get("/rooms/{id}/result", h.Result)
		r.Post("/rooms/{id}/close", h.CloseVoting)
		r.Post("/rooms/{id}/decide", h.Decide)
		r.Post("/rooms/{id}/tiebreak", h.Tiebreak)

		r.Get("/decisions", h.ListDecisions)
	})

	return r
}
