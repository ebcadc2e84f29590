package services

import (
	"fmt"
	"strings"

	"github.com/skystoreemd-lab/Monte-ai/internal/core/domain"
)

const (
	// adultThreshold é o número de palavras adultas distintas que rejeita a mensagem.
	adultThreshold = 2

	bannedWordReason   = "تم اكتشاف كلمة محظورة: %q"
	adultContentReason = "تم اكتشاف محتوى إباحي. لا يمكن معالجة هذا الطلب."
)

// ContentFilter compara mensagens com um conjunto fixo de listas de palavras.
//
// A comparação é por substring, sem diferenciar maiúsculas, e ignora limites
// de palavra: "class" casa com "ass".
type ContentFilter struct {
	lists domain.WordLists
}

func NewContentFilter(lists domain.WordLists) *ContentFilter {
	return &ContentFilter{lists: lists}
}

func (f *ContentFilter) Version() string {
	return f.lists.Version
}

// Evaluate não tem efeitos colaterais; a mesma mensagem gera sempre o mesmo resultado.
func (f *ContentFilter) Evaluate(message string) domain.FilterResult {
	lowered := strings.ToLower(message)

	var reasons []string
	for _, word := range f.lists.Banned {
		if strings.Contains(lowered, word) {
			reasons = append(reasons, fmt.Sprintf(bannedWordReason, word))
		}
	}

	adult := 0
	for _, keyword := range f.lists.Adult {
		if strings.Contains(lowered, keyword) {
			adult++
		}
	}
	if adult >= adultThreshold {
		reasons = append(reasons, adultContentReason)
	}

	return domain.FilterResult{
		Clean:   len(reasons) == 0,
		Reasons: reasons,
	}
}
