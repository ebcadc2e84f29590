package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/skystoreemd-lab/Monte-ai/internal/core/domain"
	"github.com/skystoreemd-lab/Monte-ai/internal/core/ports"
)

// RateLimiterService implementa a janela deslizante por identificador de cliente.
type RateLimiterService struct {
	storage ports.WindowStore
	rule    domain.RateLimitRule
	now     func() time.Time
}

type RateLimiterOption func(*RateLimiterService)

// WithClock substitui time.Now, usado principalmente nos testes.
func WithClock(now func() time.Time) RateLimiterOption {
	return func(s *RateLimiterService) { s.now = now }
}

// NewRateLimiterService cria uma nova instância do serviço.
func NewRateLimiterService(storage ports.WindowStore, rule domain.RateLimitRule, opts ...RateLimiterOption) (*RateLimiterService, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if rule.Requests <= 0 || rule.Window <= 0 {
		return nil, fmt.Errorf("rate limit rule must have positive values")
	}

	s := &RateLimiterService{storage: storage, rule: rule, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Allow admite a requisição quando o mesmo identificador teve menos de
// rule.Requests requisições admitidas na janela corrente. Requisições
// rejeitadas não são registradas.
func (s *RateLimiterService) Allow(ctx context.Context, req domain.RateLimitRequest) (domain.Decision, error) {
	identifier := strings.ToLower(strings.TrimSpace(req.IP))
	if identifier == "" {
		return domain.Decision{}, fmt.Errorf("client identifier is required")
	}

	now := s.now()
	res, err := s.storage.Admit(ctx, buildKey(identifier), now, s.rule)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("rate limit admit %s: %w", identifier, err)
	}

	decision := domain.Decision{
		Allowed:      res.Allowed,
		Identifier:   identifier,
		AppliedRule:  s.rule,
		CurrentCount: res.Count,
	}
	if !res.Allowed {
		if !res.Oldest.IsZero() {
			decision.RetryAfter = res.Oldest.Add(s.rule.Window).Sub(now)
		}
		return decision, domain.ErrRateLimited
	}

	return decision, nil
}

func buildKey(identifier string) string {
	return "ratelimit:ip:" + identifier
}
