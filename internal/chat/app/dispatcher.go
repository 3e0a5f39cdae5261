package app

import (
	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// Dispatcher delivers outbound events to whatever connection the registry routes each recipient to
type Dispatcher struct {
	registry *PresenceRegistry
}

// NewDispatcher create a Dispatcher
func NewDispatcher(registry *PresenceRegistry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch send events in list order; offline recipients are skipped
func (d *Dispatcher) Dispatch(events []domain.OutboundEvent) {
	for _, ev := range events {
		conn, ok := d.registry.Lookup(ev.RecipientID)
		if !ok {
			logger.Log.Debug("recipient offline", zap.String("recipient", ev.RecipientID), zap.String("action", string(ev.Action)))
			continue
		}
		if err := conn.Send(ev.Response()); err != nil {
			logger.Log.Warn("write event failed",
				zap.String("recipient", ev.RecipientID),
				zap.String("action", string(ev.Action)),
				zap.Error(err),
			)
		}
	}
}
