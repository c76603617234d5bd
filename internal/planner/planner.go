// Package planner abstracts the generative planning model. Given a
// system prompt, the conversation so far and a declared tool set, it
// returns either a final text answer or one tool invocation with
// arguments. The tool-calling loop itself lives in the chat engine.
package planner

import "context"

// ToolSpec declares one tool the planner may invoke. Parameters is a
// JSON-schema object describing the arguments.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ToolCall is one requested invocation. ID correlates the eventual
// result turn back to this call.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]interface{}
}

// Step is the planner's next move: exactly one of Text or ToolCall is
// set.
type Step struct {
	Text     string
	ToolCall *ToolCall
}

// Turn is one entry of the conversation history.
type Turn struct {
	Role       TurnRole
	Text       string
	ToolCall   *ToolCall              // set on RoleToolCall turns
	ToolResult map[string]interface{} // set on RoleToolResult turns
}

type TurnRole string

const (
	RoleUser       TurnRole = "user"
	RoleAssistant  TurnRole = "assistant"
	RoleToolCall   TurnRole = "tool_call"
	RoleToolResult TurnRole = "tool_result"
)

// Planner is the opaque planning capability.
type Planner interface {
	Next(ctx context.Context, system string, history []Turn, tools []ToolSpec) (*Step, error)
}
