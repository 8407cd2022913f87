package publishers

import "github.com/travelbank/accounts-loans/internal/logger"

// Logger is the structured logger publishers report delivery results to.
type Logger = logger.Logger

func ensureLogger(log Logger) Logger {
	if log == nil {
		return logger.NopLogger{}
	}
	return log
}
