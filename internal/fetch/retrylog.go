package fetch

import (
	"context"
	"log/slog"
)

// retryLogger adapts slog to retryablehttp.LeveledLogger. retryablehttp
// reports every failed attempt as an error; a failed attempt that will be
// retried is not a degradation, so its messages are recorded at debug level
// and Get logs the final outcome itself.
type retryLogger struct {
	logger *slog.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Log(context.Background(), slog.LevelDebug, msg, keysAndValues...)
}

func (l retryLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Log(context.Background(), slog.LevelDebug, msg, keysAndValues...)
}

func (l retryLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l retryLogger) Warn(msg string, keysAndValues ...any) {
	l.logger.Warn(msg, keysAndValues...)
}
