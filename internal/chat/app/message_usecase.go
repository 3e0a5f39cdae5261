package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	errprocess "realtime_chat_service/pkg/err"
	"realtime_chat_service/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const defaultStoreTimeout = 5 * time.Second

// MessageUseCase 負責一對一訊息的寄送與已讀
type MessageUseCase struct {
	msgRepo  repository.MessageRepository
	profiles repository.ProfileRepository
	registry *PresenceRegistry
	stream   repository.EventStream
	timeout  time.Duration

	now   func() time.Time
	newID func() string
}

// NewMessageUseCase init message use case
func NewMessageUseCase(
	msgRepo repository.MessageRepository,
	profiles repository.ProfileRepository,
	registry *PresenceRegistry,
	stream repository.EventStream,
	timeout time.Duration,
) *MessageUseCase {
	if stream == nil {
		stream = repository.NewNopEventStream()
	}
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &MessageUseCase{
		msgRepo:  msgRepo,
		profiles: profiles,
		registry: registry,
		stream:   stream,
		timeout:  timeout,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// storeContext outlives the connection that issued the request
func (uc *MessageUseCase) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), uc.timeout)
}

// Send persist a message and return the events it produces.
// On failure the only event is message-error to the sender.
func (uc *MessageUseCase) Send(ctx context.Context, senderID, receiverID, content string) (*domain.MessageView, []domain.OutboundEvent, error) {
	view, err := uc.send(ctx, senderID, receiverID, content)
	if err != nil {
		return nil, []domain.OutboundEvent{messageError(senderID, err)}, err
	}

	events := make([]domain.OutboundEvent, 0, 3)
	if view.IsDelivered {
		events = append(events, domain.OutboundEvent{
			RecipientID: receiverID,
			Action:      domain.NewMessage,
			Payload:     map[string]interface{}{"message": *view},
		})
	}
	events = append(events, domain.OutboundEvent{
		RecipientID: senderID,
		Action:      domain.MessageSent,
		Payload:     map[string]interface{}{"message": *view},
	})
	if view.IsDelivered {
		events = append(events, domain.OutboundEvent{
			RecipientID: senderID,
			Action:      domain.MessageDelivered,
			Payload:     map[string]interface{}{"messageId": view.ID, "receiverId": receiverID},
		})
	}

	uc.publish(ctx, domain.MessageEvent{
		Type:       domain.MessageEventSent,
		MessageID:  view.ID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		At:         view.CreatedAt,
	})
	return view, events, nil
}

func (uc *MessageUseCase) send(ctx context.Context, senderID, receiverID, content string) (*domain.MessageView, error) {
	content = strings.TrimSpace(content)
	switch {
	case content == "":
		return nil, errprocess.Wrap(domain.ErrValidation, "content is empty", nil, zap.String("sender", senderID))
	case receiverID == "":
		return nil, errprocess.Wrap(domain.ErrValidation, "receiver is required", nil, zap.String("sender", senderID))
	case receiverID == senderID:
		return nil, errprocess.Wrap(domain.ErrValidation, "cannot send a message to yourself", nil, zap.String("sender", senderID))
	}

	storeCtx, cancel := uc.storeContext(ctx)
	defer cancel()

	profiles, err := uc.profiles.FindByIDs(storeCtx, []string{senderID, receiverID})
	if err != nil {
		return nil, errprocess.Wrap(domain.ErrPersistence, "load profiles", err, zap.String("sender", senderID))
	}
	byID := lo.KeyBy(profiles, func(p domain.UserProfile) string { return p.ID })
	receiver, ok := byID[receiverID]
	if !ok {
		return nil, errprocess.Wrap(domain.ErrValidation, "receiver not found", nil, zap.String("receiver", receiverID))
	}
	sender, ok := byID[senderID]
	if !ok {
		sender = domain.UserProfile{ID: senderID}
	}

	msg := domain.Message{
		ID:          uc.newID(),
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Content:     content,
		CreatedAt:   uc.now().UTC().Truncate(time.Millisecond),
		IsDelivered: uc.registry.IsOnline(receiverID),
	}
	if err := uc.msgRepo.InsertMessage(storeCtx, &msg); err != nil {
		return nil, errprocess.Wrap(domain.ErrPersistence, "insert message", err, zap.String("sender", senderID))
	}

	return &domain.MessageView{Message: msg, Sender: sender, Receiver: receiver}, nil
}

// MarkRead flag a message read by its receiver. Repeating it is a no-op.
func (uc *MessageUseCase) MarkRead(ctx context.Context, readerID, messageID string) ([]domain.OutboundEvent, error) {
	msg, readAt, err := uc.markRead(ctx, readerID, messageID)
	if err != nil {
		return []domain.OutboundEvent{messageError(readerID, err)}, err
	}
	if msg == nil {
		return nil, nil
	}

	uc.publish(ctx, domain.MessageEvent{
		Type:       domain.MessageEventRead,
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		At:         readAt,
	})

	if !uc.registry.IsOnline(msg.SenderID) {
		return nil, nil
	}
	return []domain.OutboundEvent{{
		RecipientID: msg.SenderID,
		Action:      domain.MessageReadReceipt,
		Payload: map[string]interface{}{
			"messageId": msg.ID,
			"readerId":  readerID,
			"readAt":    readAt,
		},
	}}, nil
}

// markRead returns the message only when this call flipped it to read
func (uc *MessageUseCase) markRead(ctx context.Context, readerID, messageID string) (*domain.Message, time.Time, error) {
	if messageID == "" {
		return nil, time.Time{}, errprocess.Wrap(domain.ErrValidation, "message id is required", nil, zap.String("reader", readerID))
	}

	storeCtx, cancel := uc.storeContext(ctx)
	defer cancel()

	msg, err := uc.msgRepo.FindByID(storeCtx, messageID)
	if err != nil {
		return nil, time.Time{}, errprocess.Wrap(domain.ErrPersistence, "find message", err, zap.String("messageID", messageID))
	}
	if msg == nil {
		return nil, time.Time{}, errprocess.Wrap(domain.ErrNotFound, "message not found", nil, zap.String("messageID", messageID))
	}
	if msg.ReceiverID != readerID {
		return nil, time.Time{}, errprocess.Wrap(domain.ErrAuthorization, "only the receiver can mark a message read", nil,
			zap.String("messageID", messageID), zap.String("reader", readerID))
	}
	if msg.IsRead {
		return nil, time.Time{}, nil
	}

	readAt := uc.now().UTC().Truncate(time.Millisecond)
	updated, err := uc.msgRepo.MarkRead(storeCtx, messageID, readAt)
	if err != nil {
		return nil, time.Time{}, errprocess.Wrap(domain.ErrPersistence, "mark read", err, zap.String("messageID", messageID))
	}
	if !updated {
		return nil, time.Time{}, nil
	}
	return msg, readAt, nil
}

func (uc *MessageUseCase) publish(ctx context.Context, event domain.MessageEvent) {
	pubCtx, cancel := repository.PublishTimeout(ctx)
	defer cancel()

	if err := uc.stream.Publish(pubCtx, event); err != nil {
		logger.Log.Warn("publish message event failed",
			zap.String("type", string(event.Type)),
			zap.String("messageID", event.MessageID),
			zap.Error(err),
		)
	}
}

// clientError the text a client sees for a failed operation
func clientError(err error) string {
	switch {
	case errors.Is(err, domain.ErrPersistence):
		return "Failed to send message"
	case errors.Is(err, domain.ErrNotFound):
		return "Message not found"
	case errors.Is(err, domain.ErrAuthorization):
		return "Not allowed"
	default:
		return strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
	}
}

func messageError(recipientID string, err error) domain.OutboundEvent {
	return domain.OutboundEvent{
		RecipientID: recipientID,
		Action:      domain.MessageError,
		Payload:     map[string]interface{}{"error": clientError(err)},
	}
}
