// Package wallet abstracts the platform credential broker: given a
// presentation request it returns a signed credential token or a
// cancellation. The broker may block arbitrarily long on user
// interaction; cancellation is entirely its responsibility.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUserCancelled is returned when the broker surface was dismissed
// without producing a credential. Surfaced as a payment failure; the
// user may retry.
var ErrUserCancelled = errors.New("user cancelled the credential request")

// Broker is the opaque credential capability.
type Broker interface {
	// GetCredential presents requestJSON (a serialized DPC request) to
	// the wallet and returns the signed credential token.
	GetCredential(ctx context.Context, requestJSON string) (string, error)
}

// MockBroker returns a canned token echoing the request nonce, standing
// in for a real wallet in demos and tests.
type MockBroker struct {
	// Cancel makes every invocation behave as a user dismissal.
	Cancel bool
}

func (m *MockBroker) GetCredential(_ context.Context, requestJSON string) (string, error) {
	if m.Cancel {
		return "", ErrUserCancelled
	}

	var req struct {
		Request struct {
			Nonce string `json:"nonce"`
		} `json:"request"`
	}
	if err := json.Unmarshal([]byte(requestJSON), &req); err != nil {
		return "", fmt.Errorf("malformed credential request: %w", err)
	}

	token := map[string]string{
		"vp_token": "mock-signed-payment-mandate",
		"nonce":    req.Request.Nonce,
	}
	out, err := json.Marshal(token)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
