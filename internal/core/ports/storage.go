// Package ports define contratos que conectam o domínio a implementações externas.
package ports

import (
	"context"
	"time"

	"github.com/skystoreemd-lab/Monte-ai/internal/core/domain"
)

// WindowStore guarda os instantes das requisições admitidas por chave. Admit
// deve podar, contar e registrar num único passo atômico para a chave.
type WindowStore interface {
	Admit(ctx context.Context, key string, now time.Time, rule domain.RateLimitRule) (domain.WindowResult, error)
}
