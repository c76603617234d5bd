package a2a

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// AgentCard is the capability descriptor a remote agent publishes at
// /.well-known/agent-card.json. Immutable after fetch.
type AgentCard struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	URL         string       `json:"url"`
	Skills      []AgentSkill `json:"skills"`
}

type AgentSkill struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

const agentCardSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "url", "skills"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "url": {"type": "string", "minLength": 1},
    "skills": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string"}
        }
      }
    }
  }
}`

// ParseAgentCard validates raw card bytes against the embedded schema and
// decodes them. Validation failures come back as a SchemaError so callers
// can distinguish a malformed card from an unreachable one.
func ParseAgentCard(raw []byte) (*AgentCard, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(agentCardSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile agent card schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, &SchemaError{What: "agent card", Err: err}
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, &SchemaError{What: "agent card", Err: errors.New(strings.Join(problems, "; "))}
	}

	var card AgentCard
	if err := json.Unmarshal(raw, &card); err != nil {
		return nil, &SchemaError{What: "agent card", Err: err}
	}
	return &card, nil
}

// SkillIDs returns the ids of all declared skills, mostly for logging.
func (c *AgentCard) SkillIDs() []string {
	ids := make([]string, 0, len(c.Skills))
	for _, s := range c.Skills {
		ids = append(ids, s.ID)
	}
	return ids
}
