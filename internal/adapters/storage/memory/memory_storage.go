// Package memory disponibiliza a implementação do storage em memória do processo.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/skystoreemd-lab/Monte-ai/internal/core/domain"
	"github.com/skystoreemd-lab/Monte-ai/internal/core/ports"
)

// Storage guarda os instantes admitidos por chave e remove periodicamente as chaves ociosas.
type Storage struct {
	mu           sync.Mutex
	entries      map[string]*entry
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

var _ ports.WindowStore = (*Storage)(nil)

type entry struct {
	stamps   []time.Time
	lastSeen time.Time
}

type Option func(*Storage)

func WithIdleTTL(d time.Duration) Option {
	return func(s *Storage) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) Option {
	return func(s *Storage) { s.cleanupEvery = d }
}

// WithClock define o relógio usado por Cleanup.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) { s.now = now }
}

func New(opts ...Option) *Storage {
	s := &Storage{
		entries:      make(map[string]*entry),
		idleTTL:      2 * time.Minute,
		cleanupEvery: time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Storage) Admit(_ context.Context, key string, now time.Time, rule domain.RateLimitRule) (domain.WindowResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok {
		ent = &entry{}
		s.entries[key] = ent
	}
	ent.lastSeen = now

	recent := ent.stamps[:0]
	for _, t := range ent.stamps {
		if now.Sub(t) < rule.Window {
			recent = append(recent, t)
		}
	}
	ent.stamps = recent

	if len(recent) >= rule.Requests {
		return domain.WindowResult{Allowed: false, Count: len(recent), Oldest: recent[0]}, nil
	}

	ent.stamps = append(ent.stamps, now)
	return domain.WindowResult{Allowed: true, Count: len(ent.stamps), Oldest: ent.stamps[0]}, nil
}

// Len retorna o número de chaves monitoradas.
func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup remove as chaves sem acesso dentro do TTL de ociosidade.
func (s *Storage) Cleanup() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// StartJanitor executa Cleanup a cada cleanupEvery até ctx terminar.
func (s *Storage) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
