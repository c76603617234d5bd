// Package a2aclient exchanges A2A messages with one remote agent over
// JSON-RPC. It is stateless across calls apart from the agent card
// cached at discovery time.
package a2aclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/agentic-commerce/shopping-assistant/internal/a2a"
)

// ExtensionURI identifies the AP2 commerce extension on every request.
const ExtensionURI = "https://github.com/google-agentic-commerce/ap2/v1"

const agentCardPath = "/.well-known/agent-card.json"

// Client talks to a single remote agent.
type Client struct {
	Name    string
	BaseURL string
	Card    *a2a.AgentCard

	http   *http.Client
	logger *logrus.Logger
}

type rpcRequest struct {
	ID      string    `json:"id"`
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
}

type rpcParams struct {
	Configuration rpcConfiguration `json:"configuration"`
	Message       a2a.Message      `json:"message"`
}

type rpcConfiguration struct {
	AcceptedOutputModes []string `json:"acceptedOutputModes"`
	Blocking            bool     `json:"blocking"`
}

// Discover fetches and validates the remote agent's card, returning a
// client bound to that agent. Any failure, network or schema, surfaces
// as a DiscoveryError.
func Discover(ctx context.Context, name, baseURL string, logger *logrus.Logger) (*Client, error) {
	if logger == nil {
		logger = logrus.New()
	}
	cardURL := strings.TrimSuffix(baseURL, "/") + agentCardPath
	logger.Debugf("[%s] Fetching agent card from %s", name, cardURL)

	httpClient := &http.Client{Timeout: 30 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cardURL, nil)
	if err != nil {
		return nil, &a2a.DiscoveryError{URL: baseURL, Err: err}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &a2a.DiscoveryError{URL: baseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &a2a.DiscoveryError{URL: baseURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &a2a.DiscoveryError{URL: baseURL, Err: err}
	}
	card, err := a2a.ParseAgentCard(body)
	if err != nil {
		return nil, &a2a.DiscoveryError{URL: baseURL, Err: err}
	}

	logger.Infof("[%s] Agent card for %q loaded, skills: %v", name, card.Name, card.SkillIDs())
	return &Client{
		Name:    name,
		BaseURL: baseURL,
		Card:    card,
		http:    httpClient,
		logger:  logger,
	}, nil
}

// SendMessage wraps the message in a blocking JSON-RPC message/send call
// and returns the raw response envelope. Network failures come back as a
// TransportError, undecodable bodies as a SchemaError. Nothing is
// retried.
func (c *Client) SendMessage(ctx context.Context, msg a2a.Message) (*a2a.RPCResponse, error) {
	rpc := rpcRequest{
		ID:      uuid.New().String(),
		JSONRPC: "2.0",
		Method:  "message/send",
		Params: rpcParams{
			Configuration: rpcConfiguration{
				AcceptedOutputModes: []string{},
				Blocking:            true,
			},
			Message: msg,
		},
	}

	payload, err := json.Marshal(rpc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	c.logger.Debugf("[%s] Sending message %s (context %s)", c.Name, msg.MessageID, msg.ContextID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &a2a.TransportError{URL: c.BaseURL, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("X-A2A-Extensions", ExtensionURI)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &a2a.TransportError{URL: c.BaseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &a2a.TransportError{URL: c.BaseURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var rpcResp a2a.RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, &a2a.SchemaError{What: "rpc response", Err: err}
	}

	c.logger.Debugf("[%s] Response received for message %s", c.Name, msg.MessageID)
	return &rpcResp, nil
}
