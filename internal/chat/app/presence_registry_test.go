package app

import (
	"sync"
	"testing"
	"time"

	"realtime_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceRegistry_Register(t *testing.T) {
	r := NewPresenceRegistry()

	events := r.Register("alice", newFakeConn("a1"))
	require.Len(t, events, 1)
	assert.Equal(t, domain.UsersOnline, events[0].Action)
	assert.Equal(t, []string{"alice"}, events[0].Payload["userIds"])

	events = r.Register("bob", newFakeConn("b1"))
	assert.Equal(t, []string{"alice:user-online", "bob:users-online"}, actions(events))
	assert.Equal(t, "bob", events[0].Payload["userId"])
	assert.Equal(t, []string{"alice", "bob"}, events[1].Payload["userIds"])

	assert.Equal(t, []string{"alice", "bob"}, r.OnlineSnapshot())
}

func TestPresenceRegistry_Replace(t *testing.T) {
	r := NewPresenceRegistry()
	first, second := newFakeConn("a1"), newFakeConn("a2")

	r.Register("alice", first)
	r.Register("alice", second)

	conn, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "a2", conn.ID())

	// stale disconnect of the replaced connection
	events, removed := r.Deregister("alice", first)
	assert.False(t, removed)
	assert.Empty(t, events)

	conn, ok = r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "a2", conn.ID())
}

func TestPresenceRegistry_Deregister(t *testing.T) {
	r := NewPresenceRegistry()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	alice := newFakeConn("a1")
	r.Register("alice", alice)
	r.Register("bob", newFakeConn("b1"))

	events, removed := r.Deregister("alice", alice)
	require.True(t, removed)
	assert.Equal(t, []string{"bob:user-offline"}, actions(events))
	assert.Equal(t, "alice", events[0].Payload["userId"])
	assert.Equal(t, now, events[0].Payload["lastSeen"])

	assert.False(t, r.IsOnline("alice"))
	_, removed = r.Deregister("alice", alice)
	assert.False(t, removed)
}

func TestPresenceRegistry_OnlineSince(t *testing.T) {
	r := NewPresenceRegistry()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.Register("alice", newFakeConn("a1"))
	since, ok := r.OnlineSince("alice")
	require.True(t, ok)
	assert.Equal(t, now, since)

	_, ok = r.OnlineSince("bob")
	assert.False(t, ok)
}

func TestPresenceRegistry_ConcurrentReconnect(t *testing.T) {
	r := NewPresenceRegistry()

	var wg sync.WaitGroup
	conns := make([]*fakeConn, 50)
	for i := range conns {
		conns[i] = newFakeConn(string(rune('A' + i)))
	}
	for _, c := range conns {
		wg.Add(1)
		go func(c *fakeConn) {
			defer wg.Done()
			r.Register("alice", c)
		}(c)
	}
	wg.Wait()

	current, ok := r.Lookup("alice")
	require.True(t, ok)

	// every stale deregister is a no-op, only the current one removes the route
	for _, c := range conns {
		if c.ID() == current.ID() {
			continue
		}
		wg.Add(1)
		go func(c *fakeConn) {
			defer wg.Done()
			_, removed := r.Deregister("alice", c)
			assert.False(t, removed)
		}(c)
	}
	wg.Wait()

	still, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, current.ID(), still.ID())
}
