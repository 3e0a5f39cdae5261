package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"realtime_chat_service/pkg/logger"

	"github.com/stretchr/testify/assert"
)

type fakePresigner struct {
	calls int
	err   error
}

func (p *fakePresigner) PresignGetURL(_ context.Context, objectName string, _ time.Duration) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return "https://cdn.local/avatars/" + objectName + "?sig=1", nil
}

func TestMinIOAvatarResolver(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	t.Run("object key is presigned", func(t *testing.T) {
		p := &fakePresigner{}
		r := NewMinIOAvatarResolver(p, time.Minute)
		assert.Equal(t, "https://cdn.local/avatars/alice.png?sig=1", r.Resolve(ctx, "alice.png"))
	})

	t.Run("absolute url passes through", func(t *testing.T) {
		p := &fakePresigner{}
		r := NewMinIOAvatarResolver(p, time.Minute)
		assert.Equal(t, "https://example.com/a.png", r.Resolve(ctx, "https://example.com/a.png"))
		assert.Equal(t, "", r.Resolve(ctx, ""))
		assert.Zero(t, p.calls)
	})

	t.Run("presign failure keeps raw value", func(t *testing.T) {
		r := NewMinIOAvatarResolver(&fakePresigner{err: errors.New("minio down")}, time.Minute)
		assert.Equal(t, "alice.png", r.Resolve(ctx, "alice.png"))
	})
}
