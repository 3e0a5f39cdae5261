package app

import (
	"context"
	"time"

	"realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// PresenceRecorder best-effort write of the online flag to the profile store.
// Routing never waits on it and its failures are only logged.
type PresenceRecorder struct {
	profiles repository.ProfileRepository
	registry *PresenceRegistry
	timeout  time.Duration
}

// NewPresenceRecorder create a PresenceRecorder
func NewPresenceRecorder(profiles repository.ProfileRepository, registry *PresenceRegistry, timeout time.Duration) *PresenceRecorder {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &PresenceRecorder{profiles: profiles, registry: registry, timeout: timeout}
}

// Record persist online/offline with lastSeen = at.
// An offline write is skipped once the member has a route again.
func (r *PresenceRecorder) Record(userID string, online bool, at time.Time) {
	if !online && r.registry != nil && r.registry.IsOnline(userID) {
		logger.Log.Debug("member reconnected, offline write skipped", zap.String("userID", userID))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.profiles.UpdatePresence(ctx, userID, online, at); err != nil {
		logger.Log.Warn("presence sync failed",
			zap.String("userID", userID),
			zap.Bool("online", online),
			zap.Error(err),
		)
	}
}
