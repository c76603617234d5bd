package a2a

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{
		Kind:      MessageKind,
		MessageID: "abc123",
		ContextID: "ctx-1",
		Role:      RoleAgent,
		Parts: []Part{
			TextPart{Text: "running shoes"},
			DataPart{Data: map[string]interface{}{"cart_id": "cart-7"}},
		},
	}

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, msg.MessageID, decoded.MessageID)
	assert.Equal(t, msg.ContextID, decoded.ContextID)
	assert.Equal(t, msg.Role, decoded.Role)
	require.Len(t, decoded.Parts, 2)

	text, ok := decoded.Parts[0].(TextPart)
	require.True(t, ok)
	assert.Equal(t, "running shoes", text.Text)

	data, ok := decoded.Parts[1].(DataPart)
	require.True(t, ok)
	assert.Equal(t, "cart-7", data.Data["cart_id"])
}

func TestMessageWireShape(t *testing.T) {
	msg := Message{
		Kind:      MessageKind,
		MessageID: "m1",
		Role:      RoleUser,
		Parts:     []Part{TextPart{Text: "hello"}},
	}

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.Equal(t, "message", wire["kind"])
	assert.Equal(t, "m1", wire["messageId"])
	assert.Equal(t, "user", wire["role"])
	assert.NotContains(t, wire, "contextId")

	parts := wire["parts"].([]interface{})
	require.Len(t, parts, 1)
	part := parts[0].(map[string]interface{})
	assert.Equal(t, "text", part["kind"])
	assert.Equal(t, "hello", part["text"])
}

func TestEmptyTextPartSurvivesRoundTrip(t *testing.T) {
	msg := Message{Kind: MessageKind, MessageID: "m2", Role: RoleAgent, Parts: []Part{TextPart{}}}

	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"text":""`)

	var decoded Message
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Parts, 1)
	assert.Equal(t, TextPart{}, decoded.Parts[0])
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	raw := []byte(`{
		"kind": "message",
		"messageId": "m3",
		"role": "agent",
		"taskId": "ignored",
		"parts": [{"kind": "text", "text": "hi", "metadata": {"x": 1}}]
	}`)

	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "m3", msg.MessageID)
	require.Len(t, msg.Parts, 1)
}

func TestUnmarshalRejectsUnknownPartKind(t *testing.T) {
	raw := []byte(`{"kind":"message","messageId":"m4","role":"agent","parts":[{"kind":"file","uri":"x"}]}`)

	var msg Message
	err := json.Unmarshal(raw, &msg)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "file", schemaErr.Value)
}

func TestUnmarshalRejectsMissingFields(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		missing string
	}{
		{"no message id", `{"kind":"message","role":"agent","parts":[]}`, "messageId"},
		{"no role", `{"kind":"message","messageId":"m5","parts":[]}`, "role"},
		{"part without kind", `{"kind":"message","messageId":"m6","role":"agent","parts":[{"text":"hi"}]}`, "kind"},
		{"text part without text", `{"kind":"message","messageId":"m7","role":"agent","parts":[{"kind":"text"}]}`, "text"},
		{"data part without data", `{"kind":"message","messageId":"m8","role":"agent","parts":[{"kind":"data"}]}`, "data"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var msg Message
			err := json.Unmarshal([]byte(tc.raw), &msg)
			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, tc.missing, schemaErr.Missing)
		})
	}
}
