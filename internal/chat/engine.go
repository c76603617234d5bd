// Package chat runs the tool-calling orchestration loop: it mediates
// between the planner and the shopping tool handlers, one user message
// at a time, until the planner produces a final text answer.
package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/agentic-commerce/shopping-assistant/internal/a2a"
	"github.com/agentic-commerce/shopping-assistant/internal/a2aclient"
	"github.com/agentic-commerce/shopping-assistant/internal/bus"
	"github.com/agentic-commerce/shopping-assistant/internal/planner"
	"github.com/agentic-commerce/shopping-assistant/internal/session"
	"github.com/agentic-commerce/shopping-assistant/internal/shopping"
	"github.com/agentic-commerce/shopping-assistant/internal/wallet"
)

// DefaultMaxToolCalls bounds tool dispatches within a single turn. A
// planner that keeps issuing calls past this limit ends the turn with a
// LoopLimitError instead of spinning forever.
const DefaultMaxToolCalls = 16

// LoopLimitError reports a turn that exceeded the tool-call budget.
// Recoverable: the session stays usable for the next user message.
type LoopLimitError struct {
	Limit int
}

func (e *LoopLimitError) Error() string {
	return fmt.Sprintf("planner exceeded %d tool calls in one turn", e.Limit)
}

// ToolFunc executes one tool invocation against the session and returns
// the structured result fed back to the planner.
type ToolFunc func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error)

type tool struct {
	spec planner.ToolSpec
	run  ToolFunc
}

// Engine owns one conversation: its session state, its history and the
// dispatch table. Not safe for concurrent use; one engine per session.
type Engine struct {
	planner      planner.Planner
	tools        *shopping.Tools
	state        *session.State
	history      []planner.Turn
	registry     map[string]tool
	specs        []planner.ToolSpec
	eventBus     *bus.EventBus
	logger       *logrus.Logger
	maxToolCalls int
}

type Option func(*Engine)

// WithMaxToolCalls overrides the per-turn dispatch budget.
func WithMaxToolCalls(n int) Option {
	return func(e *Engine) { e.maxToolCalls = n }
}

func NewEngine(p planner.Planner, broker wallet.Broker, eventBus *bus.EventBus, logger *logrus.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	e := &Engine{
		planner:      p,
		tools:        shopping.NewTools(nil, broker, logger),
		state:        session.New(),
		eventBus:     eventBus,
		logger:       logger,
		maxToolCalls: DefaultMaxToolCalls,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.registerTools()
	return e
}

// State exposes the session state, mainly for tests and receipts.
func (e *Engine) State() *session.State { return e.state }

// Connected reports whether a merchant agent has been discovered.
func (e *Engine) Connected() bool { return e.tools.Client() != nil }

// SetAgentURL re-discovers the merchant agent at url and swaps the
// connection. Called at startup and whenever the persisted URL setting
// changes. Unlike the rest of the engine it may be called from another
// goroutine while a turn is in flight; the connection swap is guarded.
func (e *Engine) SetAgentURL(ctx context.Context, url string) error {
	client, err := a2aclient.Discover(ctx, "merchant_agent", url, e.logger)
	if err != nil {
		e.logger.Errorf("Could not fetch or parse agent card: %v", err)
		return err
	}
	e.tools.SetClient(client)
	if e.eventBus != nil {
		e.eventBus.PublishAsync(bus.EventAgentConnected, map[string]interface{}{
			"name": client.Card.Name,
			"url":  url,
		})
	}
	return nil
}

// Respond processes one user message to completion: planner calls
// interleaved with tool dispatches until the planner answers in text.
// Handler errors become structured tool results the planner can recover
// from; transport and envelope-parse failures abort the turn. Session
// state written before a failure is retained.
func (e *Engine) Respond(ctx context.Context, userText string) (string, error) {
	e.history = append(e.history, planner.Turn{Role: planner.RoleUser, Text: userText})
	e.publishStatus("Thinking...")
	defer e.publishStatus("")

	for calls := 0; ; calls++ {
		step, err := e.planner.Next(ctx, systemInstruction, e.history, e.specs)
		if err != nil {
			return "", fmt.Errorf("planner failed: %w", err)
		}

		if step.ToolCall == nil {
			e.history = append(e.history, planner.Turn{Role: planner.RoleAssistant, Text: step.Text})
			if e.eventBus != nil {
				e.eventBus.PublishChatMessage("assistant", step.Text)
			}
			return step.Text, nil
		}

		if calls >= e.maxToolCalls {
			return "", &LoopLimitError{Limit: e.maxToolCalls}
		}

		call := step.ToolCall
		e.publishStatus(fmt.Sprintf("Executing: %s...", call.Name))
		e.logger.Debugf("Executing tool %s with args %v", call.Name, call.Args)

		result, err := e.dispatch(ctx, call)
		if err != nil {
			// Transport and envelope failures are terminal for the turn.
			return "", err
		}
		e.logger.Debugf("Tool %s result: %v", call.Name, result)

		e.history = append(e.history,
			planner.Turn{Role: planner.RoleToolCall, ToolCall: call},
			planner.Turn{Role: planner.RoleToolResult, ToolCall: call, ToolResult: result},
		)
		e.publishStatus("Thinking...")
	}
}

// dispatch runs one tool call. Recoverable handler errors are folded
// into the structured result; only send/receive-path failures propagate.
func (e *Engine) dispatch(ctx context.Context, call *planner.ToolCall) (map[string]interface{}, error) {
	if e.tools.Client() == nil && requiresAgent(call.Name) {
		return map[string]interface{}{
			"status": "error",
			"message": "Not connected to the merchant_agent. Please make sure you " +
				"have the right url, and re-connect from Settings",
		}, nil
	}

	entry, ok := e.registry[call.Name]
	if !ok {
		e.logger.Errorf("Unknown tool: %s", call.Name)
		return map[string]interface{}{
			"status":  "error",
			"message": fmt.Sprintf("Unknown tool: %s", call.Name),
		}, nil
	}

	result, err := entry.run(ctx, call.Args)
	if err == nil {
		return result, nil
	}

	var transportErr *a2a.TransportError
	var schemaErr *a2a.SchemaError
	if errors.As(err, &transportErr) || errors.As(err, &schemaErr) {
		return nil, err
	}

	var precondition *session.PreconditionError
	if errors.As(err, &precondition) {
		return map[string]interface{}{
			"status":  "error",
			"message": precondition.Error(),
		}, nil
	}

	return map[string]interface{}{
		"status":  "error",
		"message": err.Error(),
	}, nil
}

func requiresAgent(name string) bool {
	switch name {
	case "find_products", "update_cart", "retrieve_dpc_options", "initiate_payment_with_otp":
		return true
	}
	return false
}

func (e *Engine) publishStatus(status string) {
	if e.eventBus != nil {
		e.eventBus.PublishStatus(status)
	}
}
