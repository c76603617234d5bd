package planner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestNewOpenAIPlannerRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIPlanner(OpenAIConfig{}, quietLogger())
	assert.Error(t, err)
}

func TestToChatMessageMapping(t *testing.T) {
	user, err := toChatMessage(Turn{Role: RoleUser, Text: "find shoes"})
	require.NoError(t, err)
	assert.Equal(t, openai.ChatMessageRoleUser, user.Role)
	assert.Equal(t, "find shoes", user.Content)

	call := &ToolCall{ID: "call-1", Name: "find_products", Args: map[string]interface{}{"description": "shoes"}}
	assistant, err := toChatMessage(Turn{Role: RoleToolCall, ToolCall: call})
	require.NoError(t, err)
	assert.Equal(t, openai.ChatMessageRoleAssistant, assistant.Role)
	require.Len(t, assistant.ToolCalls, 1)
	assert.Equal(t, "call-1", assistant.ToolCalls[0].ID)
	assert.Equal(t, "find_products", assistant.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"description":"shoes"}`, assistant.ToolCalls[0].Function.Arguments)

	result, err := toChatMessage(Turn{
		Role:       RoleToolResult,
		ToolCall:   call,
		ToolResult: map[string]interface{}{"status": "success"},
	})
	require.NoError(t, err)
	assert.Equal(t, openai.ChatMessageRoleTool, result.Role)
	assert.Equal(t, "call-1", result.ToolCallID)
	assert.JSONEq(t, `{"status":"success"}`, result.Content)

	_, err = toChatMessage(Turn{Role: RoleToolCall})
	assert.Error(t, err)
	_, err = toChatMessage(Turn{Role: TurnRole("bogus")})
	assert.Error(t, err)
}

func TestToOpenAITools(t *testing.T) {
	tools := toOpenAITools([]ToolSpec{{
		Name:        "find_products",
		Description: "Finds products.",
		Parameters:  map[string]interface{}{"type": "object"},
	}})
	require.Len(t, tools, 1)
	assert.Equal(t, openai.ToolTypeFunction, tools[0].Type)
	assert.Equal(t, "find_products", tools[0].Function.Name)
}

// completionServer fakes the chat completions endpoint with a canned
// assistant message.
func completionServer(t *testing.T, message map[string]interface{}) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"model":   "gpt-4o",
			"choices": []map[string]interface{}{{"index": 0, "message": message, "finish_reason": "stop"}},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func testPlanner(t *testing.T, baseURL string) *OpenAIPlanner {
	t.Helper()
	p, err := NewOpenAIPlanner(OpenAIConfig{APIKey: "test-key", BaseURL: baseURL}, quietLogger())
	require.NoError(t, err)
	return p
}

func TestNextReturnsText(t *testing.T) {
	server := completionServer(t, map[string]interface{}{
		"role":    "assistant",
		"content": "Here are your options.",
	})

	step, err := testPlanner(t, server.URL).Next(context.Background(), "system",
		[]Turn{{Role: RoleUser, Text: "hi"}}, nil)
	require.NoError(t, err)
	assert.Nil(t, step.ToolCall)
	assert.Equal(t, "Here are your options.", step.Text)
}

func TestNextReturnsFirstToolCall(t *testing.T) {
	server := completionServer(t, map[string]interface{}{
		"role": "assistant",
		"tool_calls": []map[string]interface{}{
			{
				"id":   "call-7",
				"type": "function",
				"function": map[string]interface{}{
					"name":      "find_products",
					"arguments": `{"description":"running shoes"}`,
				},
			},
			{
				"id":   "call-8",
				"type": "function",
				"function": map[string]interface{}{
					"name":      "select_product",
					"arguments": `{}`,
				},
			},
		},
	})

	step, err := testPlanner(t, server.URL).Next(context.Background(), "system",
		[]Turn{{Role: RoleUser, Text: "find shoes"}},
		[]ToolSpec{{Name: "find_products", Parameters: map[string]interface{}{"type": "object"}}})
	require.NoError(t, err)
	require.NotNil(t, step.ToolCall)
	assert.Equal(t, "call-7", step.ToolCall.ID)
	assert.Equal(t, "find_products", step.ToolCall.Name)
	assert.Equal(t, "running shoes", step.ToolCall.Args["description"])
}

func TestNextRejectsBadToolArguments(t *testing.T) {
	server := completionServer(t, map[string]interface{}{
		"role": "assistant",
		"tool_calls": []map[string]interface{}{
			{
				"id":   "call-9",
				"type": "function",
				"function": map[string]interface{}{
					"name":      "find_products",
					"arguments": `{not json`,
				},
			},
		},
	})

	_, err := testPlanner(t, server.URL).Next(context.Background(), "system",
		[]Turn{{Role: RoleUser, Text: "find shoes"}}, nil)
	assert.Error(t, err)
}
