// Package handlers agrupa os handlers HTTP da API de chat e do front-end.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/skystoreemd-lab/Monte-ai/internal/adapters/http/middleware"
	"github.com/skystoreemd-lab/Monte-ai/internal/adapters/http/response"
	"github.com/skystoreemd-lab/Monte-ai/internal/core/domain"
)

// maxBodyBytes limita o corpo da requisição de chat.
const maxBodyBytes = 1 << 20

type ChatReplier interface {
	Reply(ctx context.Context, clientID, message string) (string, error)
}

type ChatHandler struct {
	chat ChatReplier
}

func NewChatHandler(chat ChatReplier) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// ServeHTTP atende POST /api/chat. O rate limiter roda antes.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	message, ok := decodeMessage(w, r)
	if !ok {
		response.WriteError(w, domain.ErrInvalidMessage)
		return
	}

	reply, err := h.chat.Reply(r.Context(), middleware.ClientIP(r), message)
	if err != nil {
		response.WriteError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, domain.ChatResponse{Reply: reply, Success: true})
}

// decodeMessage aceita apenas um objeto JSON cujo "message" é uma string não vazia.
func decodeMessage(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		return "", false
	}
	if len(body.Message) == 0 {
		return "", false
	}

	var message string
	if err := json.Unmarshal(body.Message, &message); err != nil {
		return "", false
	}
	if strings.TrimSpace(message) == "" {
		return "", false
	}
	return message, true
}
