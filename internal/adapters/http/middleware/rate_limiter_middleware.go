// Package middleware disponibiliza middlewares HTTP específicos da aplicação.
package middleware

import (
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/skystoreemd-lab/Monte-ai/internal/adapters/http/response"
	"github.com/skystoreemd-lab/Monte-ai/internal/core/domain"
	"github.com/skystoreemd-lab/Monte-ai/internal/core/ports"
)

func NewRateLimiterMiddleware(limiter ports.RateLimiter, log ports.Log) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip := ClientIP(r)

			decision, err := limiter.Allow(r.Context(), domain.RateLimitRequest{IP: ip})
			if err != nil {
				if domain.IsRateLimitedError(err) {
					log.Warn("rate limit exceeded",
						zap.String("ip", ip),
						zap.Int("count", decision.CurrentCount),
					)
					if decision.RetryAfter > 0 {
						w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
					}
					response.WriteError(w, domain.ErrRateLimited)
					return
				}

				log.Error("rate limiter failed", zap.String("ip", ip), zap.Error(err))
				response.WriteError(w, err)
				return
			}

			if !decision.Allowed {
				log.Warn("rate limit exceeded", zap.String("ip", ip), zap.Int("count", decision.CurrentCount))
				response.WriteError(w, domain.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
