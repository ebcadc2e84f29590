package handlers

import (
	"net/http"
	"time"

	"github.com/skystoreemd-lab/Monte-ai/internal/adapters/http/response"
	"github.com/skystoreemd-lab/Monte-ai/internal/core/domain"
)

// isoMillis segue o formato ISO-8601 com milissegundos usado pelos navegadores.
const isoMillis = "2006-01-02T15:04:05.000Z"

// HealthHandler responde com status estático e o horário atual.
func HealthHandler(now func() time.Time) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, domain.HealthResponse{
			Status:    "ok",
			Message:   "الخادم يعمل بشكل صحيح",
			Timestamp: now().UTC().Format(isoMillis),
		})
	}
}
