package domain

import "time"

// Message 一對一聊天訊息
type Message struct {
	ID          string     `bson:"_id" json:"id"`
	Seq         int64      `bson:"seq" json:"seq"`
	SenderID    string     `bson:"sender_id" json:"senderId"`
	ReceiverID  string     `bson:"receiver_id" json:"receiverId"`
	Content     string     `bson:"content" json:"content"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	IsDelivered bool       `bson:"is_delivered" json:"isDelivered"`
	IsRead      bool       `bson:"is_read" json:"isRead"`
	ReadAt      *time.Time `bson:"read_at,omitempty" json:"readAt,omitempty"`
}

// Counterpart returns the other participant as seen from userID
func (m Message) Counterpart(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// PairKey identifies the conversation regardless of direction
func (m Message) PairKey() string {
	return PairKey(m.SenderID, m.ReceiverID)
}

// PairKey unordered key for two user ids
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// MessageEventType kind of message lifecycle event
type MessageEventType string

const (
	// MessageEventSent message persisted
	MessageEventSent MessageEventType = "sent"
	// MessageEventRead message marked read by its receiver
	MessageEventRead MessageEventType = "read"
)

// MessageEvent published to the message event stream
type MessageEvent struct {
	Type       MessageEventType `json:"type"`
	MessageID  string           `json:"messageId"`
	SenderID   string           `json:"senderId"`
	ReceiverID string           `json:"receiverId"`
	At         time.Time        `json:"at"`
}

// MessageView message with its participants' profiles, as pushed to clients
type MessageView struct {
	Message
	Sender   UserProfile `json:"sender"`
	Receiver UserProfile `json:"receiver"`
}
