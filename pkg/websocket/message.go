package websocket

import "encoding/json"

// Inbound message types a client frame's "type" field may carry
// (spec.md §4.5).
const (
	TypeMessageSend = "message.send"
	TypeReadSet     = "read.set"
	TypeTypingSet   = "typing.set"
	TypePing        = "ping"
)

// Outbound message types the server emits.
const (
	TypeMessageCreated     = "message.created"
	TypeMessageRead        = "message.read"
	TypeConversationTyping = "conversation.typing"
	TypeConversationBlock  = "conversation.blocked"
	TypePong               = "pong"
	TypeError              = "error"
)

// inboundEnvelope is used only to read the discriminator before decoding
// the rest of the frame into its concrete payload type.
type inboundEnvelope struct {
	Type string `json:"type"`
}

// MessageSendIn is the payload of an inbound message.send frame.
type MessageSendIn struct {
	ConversationID int64   `json:"conversation_id"`
	Text           string  `json:"text"`
	IdempotencyKey *string `json:"idempotency_key,omitempty"`
}

// ReadSetIn is the payload of an inbound read.set frame.
type ReadSetIn struct {
	ConversationID int64 `json:"conversation_id"`
	UpToMessageID  int64 `json:"up_to_message_id"`
}

// TypingSetIn is the payload of an inbound typing.set frame.
type TypingSetIn struct {
	ConversationID int64  `json:"conversation_id"`
	State          string `json:"state"` // "on" | "off"
}

// MessageCreatedOut is the payload of an outbound message.created frame.
type MessageCreatedOut struct {
	ConversationID int64       `json:"conversation_id"`
	Message        interface{} `json:"message"`
}

// MessageReadOut is the payload of an outbound message.read frame.
type MessageReadOut struct {
	ConversationID int64 `json:"conversation_id"`
	UserID         int64 `json:"user_id"`
	UpToMessageID  int64 `json:"up_to_message_id"`
}

// ConversationTypingOut is the payload of an outbound conversation.typing frame.
type ConversationTypingOut struct {
	ConversationID int64  `json:"conversation_id"`
	UserID         int64  `json:"user_id"`
	State          string `json:"state"`
}

// ConversationBlockedOut is the payload of an outbound conversation.blocked frame.
type ConversationBlockedOut struct {
	ConversationID int64 `json:"conversation_id"`
	ByUserID       int64 `json:"by_user_id"`
}

// ErrorOut is the payload of an outbound error frame.
type ErrorOut struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// inboundType reads just the discriminator from a raw inbound frame; the
// caller then unmarshals raw again into the concrete payload type.
func inboundType(raw []byte) (string, error) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", err
	}
	return env.Type, nil
}

// encode wraps a typed payload in the {type, ...} outbound envelope.
func encode(msgType string, payload interface{}) ([]byte, error) {
	m := map[string]interface{}{"type": msgType}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		m[k] = v
	}
	return json.Marshal(m)
}

// EncodeMessageCreated builds an outbound message.created frame; message
// is typically a dto.MessageDTO, left as interface{} so this package
// stays free of a dependency on the domain DTOs.
func EncodeMessageCreated(conversationID int64, message interface{}) ([]byte, error) {
	return encode(TypeMessageCreated, MessageCreatedOut{ConversationID: conversationID, Message: message})
}

// EncodeMessageRead builds an outbound message.read frame.
func EncodeMessageRead(conversationID, userID, upToMessageID int64) ([]byte, error) {
	return encode(TypeMessageRead, MessageReadOut{ConversationID: conversationID, UserID: userID, UpToMessageID: upToMessageID})
}

// EncodeConversationTyping builds an outbound conversation.typing frame.
func EncodeConversationTyping(conversationID, userID int64, state string) ([]byte, error) {
	return encode(TypeConversationTyping, ConversationTypingOut{ConversationID: conversationID, UserID: userID, State: state})
}

// EncodeConversationBlocked builds an outbound conversation.blocked frame.
func EncodeConversationBlocked(conversationID, byUserID int64) ([]byte, error) {
	return encode(TypeConversationBlock, ConversationBlockedOut{ConversationID: conversationID, ByUserID: byUserID})
}
