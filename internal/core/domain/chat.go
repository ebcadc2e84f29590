package domain

import "strings"

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply   string `json:"reply"`
	Success bool   `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// FilterResult é o resultado da avaliação de uma mensagem contra as listas.
type FilterResult struct {
	Clean   bool
	Reasons []string
}

// Message junta os motivos para exibição, ou retorna "" para um resultado limpo.
func (r FilterResult) Message() string {
	if r.Clean {
		return ""
	}
	return strings.Join(r.Reasons, ReasonSeparator)
}
