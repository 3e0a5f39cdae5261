package app

import (
	"sort"
	"sync"
	"time"

	"realtime_chat_service/internal/chat/domain"
)

// userPresence a member's current route
type userPresence struct {
	conn  Connection
	since time.Time
}

// PresenceRegistry at most one routable connection per member
type PresenceRegistry struct {
	mu      sync.RWMutex
	entries map[string]userPresence
	now     func() time.Time
}

// NewPresenceRegistry create an empty registry
func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		entries: make(map[string]userPresence),
		now:     time.Now,
	}
}

// Register route userID to conn, replacing any previous route.
// Returns user-online for every other member and the online snapshot for the caller.
func (r *PresenceRegistry) Register(userID string, conn Connection) []domain.OutboundEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[userID] = userPresence{conn: conn, since: r.now()}

	online := r.snapshotLocked()
	events := make([]domain.OutboundEvent, 0, len(online))
	for _, id := range online {
		if id == userID {
			continue
		}
		events = append(events, domain.OutboundEvent{
			RecipientID: id,
			Action:      domain.UserOnline,
			Payload:     map[string]interface{}{"userId": userID},
		})
	}
	return append(events, domain.OutboundEvent{
		RecipientID: userID,
		Action:      domain.UsersOnline,
		Payload:     map[string]interface{}{"userIds": online},
	})
}

// Deregister drop the route only if it is still conn; a stale call is a no-op
func (r *PresenceRegistry) Deregister(userID string, conn Connection) ([]domain.OutboundEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.entries[userID]
	if !ok || current.conn.ID() != conn.ID() {
		return nil, false
	}
	delete(r.entries, userID)

	lastSeen := r.now()
	online := r.snapshotLocked()
	events := make([]domain.OutboundEvent, 0, len(online))
	for _, id := range online {
		events = append(events, domain.OutboundEvent{
			RecipientID: id,
			Action:      domain.UserOffline,
			Payload:     map[string]interface{}{"userId": userID, "lastSeen": lastSeen},
		})
	}
	return events, true
}

// Lookup the member's current connection
func (r *PresenceRegistry) Lookup(userID string) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.entries[userID]
	if !ok {
		return nil, false
	}
	return p.conn, true
}

// IsOnline report whether userID has a route
func (r *PresenceRegistry) IsOnline(userID string) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// OnlineSince when the current route was registered
func (r *PresenceRegistry) OnlineSince(userID string) (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.entries[userID]
	return p.since, ok
}

// OnlineSnapshot sorted ids of online members
func (r *PresenceRegistry) OnlineSnapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *PresenceRegistry) snapshotLocked() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
