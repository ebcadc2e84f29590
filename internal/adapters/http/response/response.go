// Package response serializa respostas JSON e mapeia erros do domínio para HTTP.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/skystoreemd-lab/Monte-ai/internal/core/domain"
)

const (
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeInvalidMessage    = "INVALID_MESSAGE"
	CodeContentFiltered   = "CONTENT_FILTERED"
	CodeMissingAPIKey     = "MISSING_API_KEY"
	CodeAPIRateLimit      = "API_RATE_LIMIT"
	CodeInvalidAPIKey     = "INVALID_API_KEY"
	CodeGenerationFailed  = "GENERATION_FAILED"
	CodeServerError       = "SERVER_ERROR"
)

type mapping struct {
	err     error
	status  int
	code    string
	message string
}

var mappings = []mapping{
	{domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimitExceeded, "عذراً، لقد تجاوزت حد الطلبات. يرجى الانتظار قليلاً."},
	{domain.ErrInvalidMessage, http.StatusBadRequest, CodeInvalidMessage, "يرجى إدخال رسالة صحيحة"},
	{domain.ErrContentFiltered, http.StatusBadRequest, CodeContentFiltered, "الرسالة تحتوي على محتوى غير مناسب"},
	{domain.ErrMissingAPIKey, http.StatusInternalServerError, CodeMissingAPIKey, "خطأ في الخادم: مفتاح API غير موجود"},
	{domain.ErrUpstreamRateLimited, http.StatusTooManyRequests, CodeAPIRateLimit, "Gemini API مشغول. يرجى المحاولة لاحقاً."},
	{domain.ErrUpstreamAuth, http.StatusInternalServerError, CodeInvalidAPIKey, "خطأ في مفتاح API"},
	{domain.ErrGenerationFailed, http.StatusInternalServerError, CodeGenerationFailed, "لم يتمكن النموذج من توليد رد"},
}

var serverError = mapping{nil, http.StatusInternalServerError, CodeServerError, "خطأ في الاتصال بالخادم"}

// WriteError escreve o corpo JSON de erro para err. Erros desconhecidos viram SERVER_ERROR.
func WriteError(w http.ResponseWriter, err error) {
	m := lookup(err)

	message := m.message
	var filterErr *domain.FilterError
	if errors.As(err, &filterErr) && len(filterErr.Reasons) > 0 {
		message = filterErr.Message()
	}

	WriteJSON(w, m.status, domain.ErrorResponse{Error: message, Code: m.code})
}

func lookup(err error) mapping {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return m
		}
	}
	return serverError
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
