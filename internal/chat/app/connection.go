package app

import (
	"context"
	"encoding/json"
	"sync"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Connection a routable client connection
type Connection interface {
	ID() string
	Send(resp domain.WSResponse) error
}

// FrameWriter the write side of a websocket
type FrameWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// wsConnection writes frames straight to the socket, one writer at a time
type wsConnection struct {
	id string
	mu sync.Mutex
	ws FrameWriter
}

// NewWSConnection wrap a socket as a Connection
func NewWSConnection(ws FrameWriter) Connection {
	return newWSConnection(ws)
}

func newWSConnection(ws FrameWriter) *wsConnection {
	return &wsConnection{id: uuid.NewString(), ws: ws}
}

func (c *wsConnection) ID() string { return c.id }

func (c *wsConnection) Send(resp domain.WSResponse) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.write(websocket.TextMessage, b)
}

func (c *wsConnection) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(messageType, data)
}

// Relay carries envelopes between instances on member channels
type Relay interface {
	Publish(ctx context.Context, channel string, env domain.Envelope) error
	Subscribe(ctx context.Context, channel string, handler func(env domain.Envelope)) error
}

// relayConnection publishes on the member channel, the subscriber owning the socket writes it
type relayConnection struct {
	id      string
	channel string
	relay   Relay
}

// NewRelayConnection route a member's frames through relay
func NewRelayConnection(memberID string, relay Relay) Connection {
	return &relayConnection{
		id:      uuid.NewString(),
		channel: repository.MemberChannel(memberID),
		relay:   relay,
	}
}

func (c *relayConnection) ID() string { return c.id }

func (c *relayConnection) Send(resp domain.WSResponse) error {
	ctx, cancel := repository.PublishTimeout(context.Background())
	defer cancel()
	return c.relay.Publish(ctx, c.channel, domain.Envelope{ConnectionID: c.id, Response: resp})
}

// BindRelay subscribe the socket to its member channel until ctx ends
func BindRelay(ctx context.Context, memberID string, conn Connection, socket Connection, relay Relay) error {
	return relay.Subscribe(ctx, repository.MemberChannel(memberID), func(env domain.Envelope) {
		if env.ConnectionID != conn.ID() {
			return
		}
		if err := socket.Send(env.Response); err != nil {
			logger.Log.Warn("write relayed event failed",
				zap.String("userID", memberID),
				zap.String("action", env.Response.Action),
				zap.Error(err),
			)
		}
	})
}
