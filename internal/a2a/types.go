// Package a2a contains the message envelope and wire types for the
// agent-to-agent protocol used between the shopping assistant and a
// remote merchant agent.
package a2a

import "encoding/json"

// Role identifies the sender of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Part kinds. The discriminator travels in the "kind" field of each
// serialized part.
const (
	PartKindText = "text"
	PartKindData = "data"
)

// Part is a discriminated union over the content a message can carry.
// Exactly one concrete type exists per kind; decoding dispatches on the
// "kind" field, never on structural sniffing.
type Part interface {
	PartKind() string
}

// TextPart carries human-readable text.
type TextPart struct {
	Text string `json:"text"`
}

func (TextPart) PartKind() string { return PartKindText }

// DataPart carries an arbitrary structured payload.
type DataPart struct {
	Data map[string]interface{} `json:"data"`
}

func (DataPart) PartKind() string { return PartKindData }

// Message is the envelope for one conversational turn sent to a remote
// agent over JSON-RPC.
type Message struct {
	Kind      string `json:"kind"`
	MessageID string `json:"messageId"`
	ContextID string `json:"contextId,omitempty"`
	Parts     []Part `json:"parts"`
	Role      Role   `json:"role"`
}

// MessageKind is the constant discriminator carried by every envelope.
const MessageKind = "message"

type wirePart struct {
	Kind string                 `json:"kind"`
	Text *string                `json:"text,omitempty"`
	Data map[string]interface{} `json:"data,omitempty"`
}

type wireMessage struct {
	Kind      string            `json:"kind"`
	MessageID string            `json:"messageId"`
	ContextID string            `json:"contextId,omitempty"`
	Parts     []json.RawMessage `json:"parts"`
	Role      Role              `json:"role"`
}

// MarshalJSON emits the flat wire form with the kind discriminator on
// every part. Default-valued fields are always written so the receiving
// agent sees a complete structure.
func (m Message) MarshalJSON() ([]byte, error) {
	parts := make([]json.RawMessage, 0, len(m.Parts))
	for _, p := range m.Parts {
		raw, err := marshalPart(p)
		if err != nil {
			return nil, err
		}
		parts = append(parts, raw)
	}
	return json.Marshal(wireMessage{
		Kind:      m.Kind,
		MessageID: m.MessageID,
		ContextID: m.ContextID,
		Parts:     parts,
		Role:      m.Role,
	})
}

// UnmarshalJSON decodes the wire form. Unknown fields are ignored;
// a missing required field or an unrecognized part kind yields a
// SchemaError.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return &SchemaError{What: "message", Err: err}
	}
	if w.MessageID == "" {
		return &SchemaError{What: "message", Missing: "messageId"}
	}
	if w.Role == "" {
		return &SchemaError{What: "message", Missing: "role"}
	}
	parts := make([]Part, 0, len(w.Parts))
	for _, raw := range w.Parts {
		p, err := unmarshalPart(raw)
		if err != nil {
			return err
		}
		parts = append(parts, p)
	}
	m.Kind = w.Kind
	m.MessageID = w.MessageID
	m.ContextID = w.ContextID
	m.Parts = parts
	m.Role = w.Role
	return nil
}

func marshalPart(p Part) ([]byte, error) {
	switch v := p.(type) {
	case TextPart:
		text := v.Text
		return json.Marshal(wirePart{Kind: PartKindText, Text: &text})
	case *TextPart:
		text := v.Text
		return json.Marshal(wirePart{Kind: PartKindText, Text: &text})
	case DataPart:
		return marshalDataPart(v.Data)
	case *DataPart:
		return marshalDataPart(v.Data)
	default:
		return nil, &SchemaError{What: "part", Value: p.PartKind()}
	}
}

func marshalDataPart(data map[string]interface{}) ([]byte, error) {
	if data == nil {
		data = map[string]interface{}{}
	}
	return json.Marshal(wirePart{Kind: PartKindData, Data: data})
}

func unmarshalPart(raw json.RawMessage) (Part, error) {
	var w struct {
		Kind *string                `json:"kind"`
		Text *string                `json:"text"`
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, &SchemaError{What: "part", Err: err}
	}
	if w.Kind == nil {
		return nil, &SchemaError{What: "part", Missing: "kind"}
	}
	switch *w.Kind {
	case PartKindText:
		if w.Text == nil {
			return nil, &SchemaError{What: "part", Missing: "text"}
		}
		return TextPart{Text: *w.Text}, nil
	case PartKindData:
		if w.Data == nil {
			return nil, &SchemaError{What: "part", Missing: "data"}
		}
		return DataPart{Data: w.Data}, nil
	default:
		return nil, &SchemaError{What: "part", Value: *w.Kind}
	}
}
