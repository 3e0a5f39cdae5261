package errprocess

import (
	"errors"
	"testing"

	"realtime_chat_service/pkg/logger"

	"github.com/stretchr/testify/assert"
)

var errKind = errors.New("kind")

func TestWrap(t *testing.T) {
	logger.SetNewNop()

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := Wrap(errKind, "insert message", cause)

		assert.ErrorIs(t, err, errKind)
		assert.Equal(t, "kind: insert message: boom", err.Error())
	})

	t.Run("without cause", func(t *testing.T) {
		err := Wrap(errKind, "content is empty", nil)

		assert.ErrorIs(t, err, errKind)
		assert.Equal(t, "kind: content is empty", err.Error())
	})
}
