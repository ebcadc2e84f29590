package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/skystoreemd-lab/Monte-ai/internal/core/domain"
	"github.com/skystoreemd-lab/Monte-ai/internal/core/ports"
)

// ChatService passa a mensagem admitida pela validação, pelo filtro de
// conteúdo e pelo relay, nessa ordem. O rate limit acontece antes.
type ChatService struct {
	filter    *ContentFilter
	generator ports.Generator
	log       ports.Log
}

func NewChatService(filter *ContentFilter, generator ports.Generator, log ports.Log) (*ChatService, error) {
	if filter == nil {
		return nil, fmt.Errorf("content filter is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatService{filter: filter, generator: generator, log: log}, nil
}

// Reply retorna a resposta gerada para message ou um dos erros do domínio.
// clientID é usado apenas nos logs.
func (s *ChatService) Reply(ctx context.Context, clientID, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", domain.ErrInvalidMessage
	}

	result := s.filter.Evaluate(message)
	if !result.Clean {
		s.log.Warn("message rejected by content filter",
			zap.String("ip", clientID),
			zap.String("reason", result.Message()),
			zap.String("word_lists", s.filter.Version()),
		)
		return "", &domain.FilterError{Reasons: result.Reasons}
	}

	if !s.generator.Configured() {
		s.log.Error("gemini api key is not configured")
		return "", domain.ErrMissingAPIKey
	}

	reply, err := s.generator.Generate(ctx, message)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationFailed) {
			s.log.Error("gemini returned no reply", zap.String("ip", clientID))
		} else {
			s.log.Error("gemini request failed", zap.String("ip", clientID), zap.Error(err))
		}
		return "", err
	}

	s.log.Info("gemini reply generated", zap.String("ip", clientID), zap.Int("reply_len", len(reply)))
	return reply, nil
}
