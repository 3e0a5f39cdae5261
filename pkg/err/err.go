package errprocess

import (
	"fmt"

	"realtime_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// Wrap log the cause and return it wrapped under kind, so callers can match kind with errors.Is
func Wrap(kind error, msg string, cause error, fields ...zap.Field) error {
	if cause == nil {
		logger.Log.Warn(msg, append(fields, zap.String("kind", kind.Error()))...)
		return fmt.Errorf("%w: %s", kind, msg)
	}
	logger.Log.Error(msg, append(fields, zap.String("kind", kind.Error()), zap.Error(cause))...)
	return fmt.Errorf("%w: %s: %v", kind, msg, cause)
}
