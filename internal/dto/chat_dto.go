package dto

// ConversationListQuery binds GET /chat/conversations (spec.md §4.5).
type ConversationListQuery struct {
	UserID int64  `query:"user_id" validate:"required"`
	Limit  int    `query:"limit"`
	Cursor string `query:"cursor"`
}

type ConversationDTO struct {
	ID           int64      `json:"id"`
	Counterparty ProfileDTO `json:"counterparty"`
	UnreadCount  int        `json:"unread_count"`
	BlockedBy    *int64     `json:"blocked_by,omitempty"`
	UpdatedAt    string     `json:"updated_at"`
}

type ConversationListDTO struct {
	Conversations []ConversationDTO `json:"conversations"`
	NextCursor    string            `json:"next_cursor,omitempty"`
}

// MessageHistoryQuery binds GET /chat/conversations/{id}/messages.
type MessageHistoryQuery struct {
	Limit  int   `query:"limit"`
	Before int64 `query:"before"`
}

type MessageDTO struct {
	ID             int64  `json:"id"`
	ConversationID int64  `json:"conversation_id"`
	SenderID       int64  `json:"sender_id"`
	Content        string `json:"content"`
	ContentType    string `json:"content_type"`
	CreatedAt      string `json:"created_at"`
	ReadAt         string `json:"read_at,omitempty"`
}

type MessageListDTO struct {
	Messages []MessageDTO `json:"messages"`
}

// SendMessageRequest is the body of POST /chat/messages, the HTTP fallback
// to the WebSocket send path (spec.md §4.5).
type SendMessageRequest struct {
	ConversationID int64  `json:"conversation_id" validate:"required"`
	Content        string `json:"content" validate:"required,max=4000"`
	ContentType    string `json:"content_type,omitempty" validate:"omitempty,oneof=text system"`
}

type SendMessageResponse struct {
	MessageID int64  `json:"message_id"`
	SentAt    string `json:"sent_at"`
}

type ReportConversationRequest struct {
	Category string `json:"type" validate:"required"`
	Reason   string `json:"reason" validate:"required,max=1000"`
}
