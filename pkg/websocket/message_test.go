package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMessageCreated_CarriesTypeAndPayload(t *testing.T) {
	frame, err := EncodeMessageCreated(7, map[string]interface{}{"id": float64(99), "text": "hi"})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(frame, &decoded))

	assert.Equal(t, TypeMessageCreated, decoded["type"])
	assert.Equal(t, float64(7), decoded["conversation_id"])
	msg, ok := decoded["message"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "hi", msg["text"])
}

func TestEncodeConversationBlocked(t *testing.T) {
	frame, err := EncodeConversationBlocked(3, 10)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(frame, &decoded))
	assert.Equal(t, TypeConversationBlock, decoded["type"])
	assert.Equal(t, float64(3), decoded["conversation_id"])
	assert.Equal(t, float64(10), decoded["by_user_id"])
}

func TestInboundType_ReadsDiscriminatorOnly(t *testing.T) {
	raw := []byte(`{"type":"message.send","conversation_id":1,"text":"hey"}`)
	typ, err := inboundType(raw)
	require.NoError(t, err)
	assert.Equal(t, TypeMessageSend, typ)

	var payload MessageSendIn
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, int64(1), payload.ConversationID)
	assert.Equal(t, "hey", payload.Text)
}
