package planner

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// OpenAIPlanner drives an OpenAI-compatible chat model with function
// calling. One completion per Next call.
type OpenAIPlanner struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *logrus.Logger
}

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string // optional, for OpenAI-compatible endpoints
	Model       string
	MaxTokens   int
	Temperature float32
}

func NewOpenAIPlanner(cfg OpenAIConfig, logger *logrus.Logger) (*OpenAIPlanner, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("planner requires an API key")
	}
	if logger == nil {
		logger = logrus.New()
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}
	return &OpenAIPlanner{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

// Next submits the conversation and declared tools and maps the model's
// reply to a Step. A reply carrying tool calls yields the first call;
// otherwise the text content is the final answer.
func (p *OpenAIPlanner) Next(ctx context.Context, system string, history []Turn, tools []ToolSpec) (*Step, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, turn := range history {
		msg, err := toChatMessage(turn)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}
	if len(tools) > 0 {
		req.Tools = toOpenAITools(tools)
		req.ToolChoice = "auto"
	}

	p.logger.Debugf("Planner call: %d history turns, %d tools", len(history), len(tools))

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("planner call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("planner returned no choices")
	}

	choice := resp.Choices[0].Message
	if len(choice.ToolCalls) > 0 {
		call := choice.ToolCalls[0]
		args := map[string]interface{}{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("planner produced unparseable tool arguments: %w", err)
			}
		}
		return &Step{ToolCall: &ToolCall{
			ID:   call.ID,
			Name: call.Function.Name,
			Args: args,
		}}, nil
	}

	return &Step{Text: choice.Content}, nil
}

func toChatMessage(turn Turn) (openai.ChatCompletionMessage, error) {
	switch turn.Role {
	case RoleUser:
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: turn.Text}, nil
	case RoleAssistant:
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: turn.Text}, nil
	case RoleToolCall:
		if turn.ToolCall == nil {
			return openai.ChatCompletionMessage{}, fmt.Errorf("tool_call turn without a call")
		}
		args, err := json.Marshal(turn.ToolCall.Args)
		if err != nil {
			return openai.ChatCompletionMessage{}, err
		}
		return openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleAssistant,
			ToolCalls: []openai.ToolCall{{
				ID:   turn.ToolCall.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      turn.ToolCall.Name,
					Arguments: string(args),
				},
			}},
		}, nil
	case RoleToolResult:
		content, err := json.Marshal(turn.ToolResult)
		if err != nil {
			return openai.ChatCompletionMessage{}, err
		}
		callID := ""
		if turn.ToolCall != nil {
			callID = turn.ToolCall.ID
		}
		return openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			Content:    string(content),
			ToolCallID: callID,
		}, nil
	default:
		return openai.ChatCompletionMessage{}, fmt.Errorf("unknown turn role %q", turn.Role)
	}
}

func toOpenAITools(specs []ToolSpec) []openai.Tool {
	tools := make([]openai.Tool, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		})
	}
	return tools
}
