package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"
	"realtime_chat_service/pkg/middlewares"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

var errInvalidFrame = fmt.Errorf("%w: invalid request", domain.ErrValidation)

// ChatWebsocketHandler 可包含所有需要的 UseCase
type ChatWebsocketHandler struct {
	registry   *PresenceRegistry
	recorder   *PresenceRecorder
	dispatcher *Dispatcher
	messageUC  *MessageUseCase
	typing     *TypingChannel
	validate   *validator.Validate

	// presenceMu 讓 presence 廣播依 registry 變更的順序送出
	presenceMu sync.Mutex

	relay        Relay
	pingInterval time.Duration
}

// NewChatWebsocketHandler create ChatWebsocketHandler, relay nil writes straight to the socket
func NewChatWebsocketHandler(
	registry *PresenceRegistry,
	recorder *PresenceRecorder,
	messageUC *MessageUseCase,
	typing *TypingChannel,
	relay Relay,
	pingInterval time.Duration,
) *ChatWebsocketHandler {
	if pingInterval <= 0 {
		pingInterval = 10 * time.Minute
	}
	return &ChatWebsocketHandler{
		registry:     registry,
		recorder:     recorder,
		dispatcher:   NewDispatcher(registry),
		messageUC:    messageUC,
		typing:       typing,
		validate:     validator.New(),
		relay:        relay,
		pingInterval: pingInterval,
	}
}

// Connect register the member's connection and announce it
func (h *ChatWebsocketHandler) Connect(memberID string, conn Connection) {
	h.presenceMu.Lock()
	h.dispatcher.Dispatch(h.registry.Register(memberID, conn))
	h.presenceMu.Unlock()

	if h.recorder != nil {
		h.recorder.Record(memberID, true, time.Now())
	}
}

// Disconnect drop the connection; a replaced connection changes nothing
func (h *ChatWebsocketHandler) Disconnect(memberID string, conn Connection) {
	h.presenceMu.Lock()
	since, _ := h.registry.OnlineSince(memberID)
	events, removed := h.registry.Deregister(memberID, conn)
	if removed {
		h.dispatcher.Dispatch(events)
	}
	h.presenceMu.Unlock()

	if !removed {
		logger.Log.Debug("stale disconnect ignored", zap.String("userID", memberID), zap.String("conn", conn.ID()))
		return
	}
	logger.Log.Info("member offline", zap.String("userID", memberID), zap.Duration("online", time.Since(since)))
	if h.recorder != nil {
		h.recorder.Record(memberID, false, time.Now())
	}
}

// HandleFrame process one text frame from memberID
func (h *ChatWebsocketHandler) HandleFrame(ctx context.Context, memberID string, conn Connection, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		logger.Log.Warn("json unmarshal error", zap.String("userID", memberID), zap.Error(err))
		h.sendError(conn, "invalid payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		logger.Log.Warn("invalid frame", zap.String("userID", memberID), zap.String("action", req.Action), zap.Error(err))
		switch domain.Action(req.Action) {
		case domain.SendMessage, domain.MarkRead:
			h.dispatcher.Dispatch([]domain.OutboundEvent{messageError(memberID, errInvalidFrame)})
		default:
			h.sendError(conn, "unknown action")
		}
		return
	}

	var events []domain.OutboundEvent
	switch domain.Action(req.Action) {
	case domain.SendMessage:
		_, events, _ = h.messageUC.Send(ctx, memberID, req.ReceiverID, req.Content)
	case domain.MarkRead:
		events, _ = h.messageUC.MarkRead(ctx, memberID, req.MessageID)
	case domain.TypingStart:
		events = h.typing.Start(memberID, req.ReceiverID)
	case domain.TypingStop:
		events = h.typing.Stop(memberID, req.ReceiverID)
	}
	h.dispatcher.Dispatch(events)
}

// HandleConnection 是 WebSocket 連線的進入點
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, ws *websocket.Conn) {
	memberID, _ := ws.Locals(middlewares.TokenMemberID).(string)
	socket := newWSConnection(ws)

	ctxClose, cancel := context.WithCancel(ctx)
	ticker := time.NewTicker(h.pingInterval)

	var conn Connection = socket
	if h.relay != nil {
		conn = NewRelayConnection(memberID, h.relay)
		if err := BindRelay(ctxClose, memberID, conn, socket, h.relay); err != nil {
			logger.Log.Error("relay subscribe failed", zap.String("userID", memberID), zap.Error(err))
			ticker.Stop()
			cancel()
			ws.Close()
			return
		}
	}
	logger.Log.Info("websocket connected", zap.String("userID", memberID), zap.String("conn", conn.ID()))

	defer func() {
		ticker.Stop()
		h.Disconnect(memberID, conn)
		cancel()
		ws.Close()
		logger.Log.Info("websocket close", zap.String("userID", memberID), zap.String("conn", conn.ID()))
	}()

	//server發出ping之後client連線正常會回pong
	ws.SetPongHandler(func(appData string) error {
		logger.Log.Debug("Received PONG", zap.String("userID", memberID))
		return nil
	})

	h.Connect(memberID, conn)

	// 定期發送 Ping
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := socket.write(websocket.PingMessage, []byte("ping")); err != nil {
					logger.Log.Warn("Ping error", zap.String("userID", memberID), zap.Error(err))
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Debug("Connection closed", zap.String("userID", memberID))
			} else {
				//直接斷線 1006
				logger.Log.Warn("websocket read error", zap.String("userID", memberID), zap.Error(err))
			}
			return
		}

		switch mt {
		case websocket.TextMessage:
			h.HandleFrame(ctxClose, memberID, conn, message)
		default:
			h.sendError(conn, "unsupported frame type")
		}
	}
}

func (h *ChatWebsocketHandler) sendError(conn Connection, errorMsg string) {
	resp := domain.WSResponse{
		Action:  string(domain.ActionError),
		Success: false,
		Payload: map[string]interface{}{
			"error": errorMsg,
		},
	}
	if err := conn.Send(resp); err != nil {
		logger.Log.Warn("write message error", zap.Error(err))
	}
}
