package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/skystoreemd-lab/Monte-ai/internal/adapters/http/middleware"
	"github.com/skystoreemd-lab/Monte-ai/internal/core/ports"
)

type RouterConfig struct {
	Limiter        ports.RateLimiter
	Chat           ChatReplier
	Log            ports.Log
	StaticDir      string
	AllowedOrigins []string
	TrustProxy     bool
	Now            func() time.Time
}

// NewRouter monta a API e o front-end estático. Só /api/chat passa pelo rate limit.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(cfg.Log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.NewRateLimiterMiddleware(cfg.Limiter, cfg.Log)).
			Method(http.MethodPost, "/chat", NewChatHandler(cfg.Chat))
		r.Get("/health", HealthHandler(cfg.Now))
	})

	r.Get("/", IndexHandler(cfg.StaticDir))
	r.Handle("/*", StaticHandler(cfg.StaticDir))

	return r
}
