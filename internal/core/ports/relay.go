package ports

import "context"

// Generator encaminha uma única mensagem à API de geração e devolve a resposta.
type Generator interface {
	Generate(ctx context.Context, message string) (string, error)
	Configured() bool
}
