package domain

// Action websocket event name
type Action string

const (
	// SendMessage inbound send-message
	SendMessage Action = "send-message"
	// MarkRead inbound mark-read
	MarkRead Action = "mark-read"
	// TypingStart inbound typing-start
	TypingStart Action = "typing-start"
	// TypingStop inbound typing-stop
	TypingStop Action = "typing-stop"

	// NewMessage outbound to the receiver
	NewMessage Action = "new-message"
	// MessageSent outbound to the sender once persisted
	MessageSent Action = "message-sent"
	// MessageDelivered outbound to the sender when the receiver was online
	MessageDelivered Action = "message-delivered"
	// MessageReadReceipt outbound to the sender when the receiver read the message
	MessageReadReceipt Action = "message-read-receipt"
	// MessageError outbound to the sender when send or mark-read failed
	MessageError Action = "message-error"
	// TypingStarted outbound typing indicator on
	TypingStarted Action = "typing-started"
	// TypingStopped outbound typing indicator off
	TypingStopped Action = "typing-stopped"
	// UserOnline outbound presence broadcast
	UserOnline Action = "user-online"
	// UserOffline outbound presence broadcast
	UserOffline Action = "user-offline"
	// UsersOnline outbound snapshot sent on connect
	UsersOnline Action = "users-online"
	// ActionError outbound reply to a frame that could not be handled
	ActionError Action = "error"
)

// WSRequest websocket Request
type WSRequest struct {
	Action     string `json:"action" validate:"required,oneof=send-message mark-read typing-start typing-stop"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	MessageID  string `json:"messageId" validate:"required_if=Action mark-read"`
	SenderID   string `json:"senderId"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// OutboundEvent addressed to one recipient, resolved through the presence registry at dispatch
type OutboundEvent struct {
	RecipientID string
	Action      Action
	Payload     map[string]interface{}
}

// Response render the event as a websocket frame
func (e OutboundEvent) Response() WSResponse {
	return WSResponse{
		Action:  string(e.Action),
		Success: e.Action != MessageError,
		Payload: e.Payload,
	}
}

// Envelope relayed on a member channel, only the addressed connection writes it
type Envelope struct {
	ConnectionID string     `json:"connection_id"`
	Response     WSResponse `json:"response"`
}
