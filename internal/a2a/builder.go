package a2a

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// ShoppingAgentID tags every outbound message with the sending agent's
// identity so the receiving agent can authenticate the origin inside the
// payload itself, independent of transport headers.
const ShoppingAgentID = "trusted_shopping_agent"

const agentIDKey = "shopping_agent_id"

// MessageBuilder assembles an outbound Message part by part.
type MessageBuilder struct {
	parts     []Part
	contextID string
}

func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{}
}

// AddText appends a text part.
func (b *MessageBuilder) AddText(text string) *MessageBuilder {
	b.parts = append(b.parts, TextPart{Text: text})
	return b
}

// AddData appends a data part. When key is non-empty the value is wrapped
// in an object under that key; otherwise the value itself must marshal to
// a JSON object.
func (b *MessageBuilder) AddData(key string, v interface{}) *MessageBuilder {
	data := toJSONValue(v)
	if key != "" {
		b.parts = append(b.parts, DataPart{Data: map[string]interface{}{key: data}})
		return b
	}
	if obj, ok := data.(map[string]interface{}); ok {
		b.parts = append(b.parts, DataPart{Data: obj})
	} else {
		b.parts = append(b.parts, DataPart{Data: map[string]interface{}{"value": data}})
	}
	return b
}

// SetContextID sets the correlation id shared with the remote agent.
func (b *MessageBuilder) SetContextID(contextID string) *MessageBuilder {
	b.contextID = contextID
	return b
}

// Build finalizes the message: the agent-identity data part is appended,
// a fresh dash-free message id is generated and the role is fixed to
// agent. The resulting parts list is therefore never empty.
func (b *MessageBuilder) Build() Message {
	parts := append(b.parts, DataPart{Data: map[string]interface{}{agentIDKey: ShoppingAgentID}})
	return Message{
		Kind:      MessageKind,
		MessageID: strings.ReplaceAll(uuid.New().String(), "-", ""),
		ContextID: b.contextID,
		Parts:     parts,
		Role:      RoleAgent,
	}
}

// toJSONValue round-trips v through encoding/json so struct payloads end
// up as the generic maps the wire codec expects.
func toJSONValue(v interface{}) interface{} {
	switch v.(type) {
	case string, bool, float64, int, int64, nil, map[string]interface{}, []interface{}:
		return v
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}
