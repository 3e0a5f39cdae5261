package app

import "realtime_chat_service/internal/chat/domain"

// TypingChannel forwards typing signals to online receivers, nothing is kept
type TypingChannel struct {
	registry *PresenceRegistry
}

// NewTypingChannel create a TypingChannel
func NewTypingChannel(registry *PresenceRegistry) *TypingChannel {
	return &TypingChannel{registry: registry}
}

// Start typing-started for toUserID
func (t *TypingChannel) Start(fromUserID, toUserID string) []domain.OutboundEvent {
	return t.signal(fromUserID, toUserID, domain.TypingStarted)
}

// Stop typing-stopped for toUserID
func (t *TypingChannel) Stop(fromUserID, toUserID string) []domain.OutboundEvent {
	return t.signal(fromUserID, toUserID, domain.TypingStopped)
}

func (t *TypingChannel) signal(fromUserID, toUserID string, action domain.Action) []domain.OutboundEvent {
	if toUserID == "" || toUserID == fromUserID || !t.registry.IsOnline(toUserID) {
		return nil
	}
	return []domain.OutboundEvent{{
		RecipientID: toUserID,
		Action:      action,
		Payload:     map[string]interface{}{"userId": fromUserID},
	}}
}
