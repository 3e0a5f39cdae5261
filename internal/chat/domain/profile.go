package domain

import "time"

// UserProfile read-only projection of a member from the profile store
type UserProfile struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	FullName string     `json:"fullName"`
	Avatar   string     `json:"avatar"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

// LastMessage newest message of a conversation
type LastMessage struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	SenderID  string    `json:"senderId"`
	IsRead    bool      `json:"isRead"`
}

// ConversationSummary one entry of a member's conversation list
type ConversationSummary struct {
	CounterpartID string      `json:"counterpartId"`
	Username      string      `json:"username"`
	FullName      string      `json:"fullName"`
	Avatar        string      `json:"avatar"`
	IsOnline      bool        `json:"isOnline"`
	LastSeen      *time.Time  `json:"lastSeen,omitempty"`
	LastMessage   LastMessage `json:"lastMessage"`

	seq int64
}

// Seq insertion order of the last message, used as a tie-break
func (c ConversationSummary) Seq() int64 {
	return c.seq
}

// NewConversationSummary build a summary from the newest message of a pair
func NewConversationSummary(userID string, m Message) ConversationSummary {
	return ConversationSummary{
		CounterpartID: m.Counterpart(userID),
		LastMessage: LastMessage{
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			SenderID:  m.SenderID,
			IsRead:    m.IsRead,
		},
		seq: m.Seq,
	}
}

// Page offset/limit window over a list
type Page struct {
	Offset int `query:"offset" validate:"gte=0"`
	Limit  int `query:"limit" validate:"gte=0,lte=200"`
}

// Window clamp the page to n items and return the slice bounds
func (p Page) Window(n int) (int, int) {
	start := p.Offset
	if start > n {
		start = n
	}
	end := n
	if p.Limit > 0 && start+p.Limit < n {
		end = start + p.Limit
	}
	return start, end
}

// HistoryQuery paging of a pair's message history
type HistoryQuery struct {
	Limit  int   `query:"limit" validate:"gte=0,lte=200"`
	Before int64 `query:"before" validate:"gte=0"`
}
