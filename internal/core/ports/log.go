package ports

import "go.uber.org/zap"

// Log é o subconjunto de *zap.Logger usado pelo core e pelos adapters.
type Log interface {
	Info(string, ...zap.Field)
	Warn(string, ...zap.Field)
	Error(string, ...zap.Field)
}
