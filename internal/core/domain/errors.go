package domain

import (
	"errors"
	"strings"
)

var (
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrInvalidMessage      = errors.New("invalid message")
	ErrContentFiltered     = errors.New("content filtered")
	ErrMissingAPIKey       = errors.New("gemini api key is not configured")
	ErrUpstreamRateLimited = errors.New("upstream rate limited")
	ErrUpstreamAuth        = errors.New("upstream rejected api key")
	ErrGenerationFailed    = errors.New("upstream returned no candidate text")
	ErrUpstream            = errors.New("upstream request failed")
)

// ReasonSeparator separa os motivos do filtro na exibição.
const ReasonSeparator = " | "

// FilterError carrega os motivos pelos quais o filtro de conteúdo rejeitou a mensagem.
type FilterError struct {
	Reasons []string
}

func (e *FilterError) Error() string {
	return "content filtered: " + strings.Join(e.Reasons, ReasonSeparator)
}

func (e *FilterError) Unwrap() error {
	return ErrContentFiltered
}

// Message retorna os motivos unidos para exibição ao cliente.
func (e *FilterError) Message() string {
	return strings.Join(e.Reasons, ReasonSeparator)
}

func IsRateLimitedError(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
