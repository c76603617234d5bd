package a2aclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-commerce/shopping-assistant/internal/a2a"
)

const testCard = `{
	"name": "Test Merchant",
	"description": "Test agent",
	"url": "http://example.invalid",
	"skills": [{"id": "search", "name": "Search"}]
}`

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestDiscover(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/.well-known/agent-card.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(testCard))
	}))
	defer server.Close()

	client, err := Discover(context.Background(), "shopper", server.URL, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "Test Merchant", client.Card.Name)
	assert.Equal(t, server.URL, client.BaseURL)
}

func TestDiscoverUnreachable(t *testing.T) {
	_, err := Discover(context.Background(), "shopper", "http://127.0.0.1:1", quietLogger())
	var discoveryErr *a2a.DiscoveryError
	require.ErrorAs(t, err, &discoveryErr)
}

func TestDiscoverBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := Discover(context.Background(), "shopper", server.URL, quietLogger())
	var discoveryErr *a2a.DiscoveryError
	require.ErrorAs(t, err, &discoveryErr)
	assert.Contains(t, err.Error(), "404")
}

func TestDiscoverInvalidCard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"skills": []}`))
	}))
	defer server.Close()

	_, err := Discover(context.Background(), "shopper", server.URL, quietLogger())
	var discoveryErr *a2a.DiscoveryError
	require.ErrorAs(t, err, &discoveryErr)
	var schemaErr *a2a.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestSendMessage(t *testing.T) {
	var captured struct {
		ID      string `json:"id"`
		JSONRPC string `json:"jsonrpc"`
		Method  string `json:"method"`
		Params  struct {
			Configuration struct {
				AcceptedOutputModes []string `json:"acceptedOutputModes"`
				Blocking            bool     `json:"blocking"`
			} `json:"configuration"`
			Message json.RawMessage `json:"message"`
		} `json:"params"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/.well-known/agent-card.json" {
			w.Write([]byte(testCard))
			return
		}
		assert.Equal(t, ExtensionURI, r.Header.Get("X-A2A-Extensions"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"id":"1","jsonrpc":"2.0","result":{"artifacts":[]}}`))
	}))
	defer server.Close()

	client, err := Discover(context.Background(), "shopper", server.URL, quietLogger())
	require.NoError(t, err)

	msg := a2a.NewMessageBuilder().AddText("hello").Build()
	resp, err := client.SendMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "2.0", resp.JSONRPC)

	assert.Equal(t, "message/send", captured.Method)
	assert.Equal(t, "2.0", captured.JSONRPC)
	assert.True(t, captured.Params.Configuration.Blocking)
	assert.NotNil(t, captured.Params.Configuration.AcceptedOutputModes)
	assert.Empty(t, captured.Params.Configuration.AcceptedOutputModes)

	var sent a2a.Message
	require.NoError(t, json.Unmarshal(captured.Params.Message, &sent))
	assert.Equal(t, msg.MessageID, sent.MessageID)
	assert.Equal(t, a2a.RoleAgent, sent.Role)
}

func TestSendMessageServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/.well-known/agent-card.json" {
			w.Write([]byte(testCard))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := Discover(context.Background(), "shopper", server.URL, quietLogger())
	require.NoError(t, err)

	_, err = client.SendMessage(context.Background(), a2a.NewMessageBuilder().Build())
	var transportErr *a2a.TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestSendMessageMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/.well-known/agent-card.json" {
			w.Write([]byte(testCard))
			return
		}
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client, err := Discover(context.Background(), "shopper", server.URL, quietLogger())
	require.NoError(t, err)

	_, err = client.SendMessage(context.Background(), a2a.NewMessageBuilder().Build())
	var schemaErr *a2a.SchemaError
	require.ErrorAs(t, err, &schemaErr)
}
