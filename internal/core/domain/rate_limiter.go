// Package domain concentra entidades e estruturas centrais do relay de chat.
package domain

import "time"

type RateLimitRule struct {
	Requests int
	Window   time.Duration
}

type RateLimitRequest struct {
	IP string
}

type Decision struct {
	Allowed      bool
	Identifier   string
	AppliedRule  RateLimitRule
	CurrentCount int
	RetryAfter   time.Duration
}

// WindowResult é o que o storage da janela reporta após uma tentativa de admissão.
type WindowResult struct {
	Allowed bool
	Count   int
	Oldest  time.Time
}
