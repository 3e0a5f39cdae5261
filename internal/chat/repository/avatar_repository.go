package repository

import (
	"context"
	"strings"
	"time"

	"realtime_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// AvatarResolver turn a stored avatar value into a URL clients can fetch
type AvatarResolver interface {
	Resolve(ctx context.Context, raw string) string
}

// PassthroughAvatars returns stored values unchanged
type PassthroughAvatars struct{}

// Resolve implements AvatarResolver
func (PassthroughAvatars) Resolve(_ context.Context, raw string) string {
	return raw
}

// Presigner signs a GET URL for an object key
type Presigner interface {
	PresignGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

type minioAvatarResolver struct {
	presigner Presigner
	expiry    time.Duration
}

// NewMinIOAvatarResolver presign avatar object keys, absolute URLs pass through
func NewMinIOAvatarResolver(presigner Presigner, expiry time.Duration) AvatarResolver {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &minioAvatarResolver{presigner: presigner, expiry: expiry}
}

func (r *minioAvatarResolver) Resolve(ctx context.Context, raw string) string {
	if raw == "" || strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}

	url, err := r.presigner.PresignGetURL(ctx, raw, r.expiry)
	if err != nil {
		logger.Log.Warn("presign avatar failed", zap.String("object", raw), zap.Error(err))
		return raw
	}
	return url
}
