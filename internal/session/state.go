// Package session carries the mutable working memory of one chat
// conversation. A State instance is exclusively owned by its
// orchestration loop; there is no concurrent access and therefore no
// locking. A multi-session host must give each session its own instance.
package session

import (
	"fmt"

	"github.com/agentic-commerce/shopping-assistant/internal/mandate"
)

// State threads data between tool dispatches across one shopping
// session. Fields are populated incrementally and never reset except by
// starting a new session.
type State struct {
	IntentMandate        *mandate.IntentMandate
	ProductOptions       []mandate.CartMandate
	CartMandate          *mandate.CartMandate
	ShippingAddress      *mandate.ContactAddress
	ShoppingContextID    string
	SignedPaymentMandate string
	DPCRequest           string
}

func New() *State {
	return &State{}
}

// PreconditionError reports a tool running without required prior state,
// e.g. updating a cart before any product was selected. Fed back to the
// planner as a structured result so it can recover conversationally.
type PreconditionError struct {
	Missing string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition not met: %s", e.Missing)
}

// RequireContext returns the shopping context id established by the
// first product search, or a PreconditionError when no search has
// happened yet.
func (s *State) RequireContext() (string, error) {
	if s.ShoppingContextID == "" {
		return "", &PreconditionError{Missing: "no shopping session; search for products first"}
	}
	return s.ShoppingContextID, nil
}

// RequireCart returns the selected cart mandate or a PreconditionError.
func (s *State) RequireCart() (*mandate.CartMandate, error) {
	if s.CartMandate == nil {
		return nil, &PreconditionError{Missing: "no cart selected"}
	}
	return s.CartMandate, nil
}

// RequireShippingAddress returns the captured address or a
// PreconditionError.
func (s *State) RequireShippingAddress() (*mandate.ContactAddress, error) {
	if s.ShippingAddress == nil {
		return nil, &PreconditionError{Missing: "no shipping address on file"}
	}
	return s.ShippingAddress, nil
}

// RequireSignedPaymentMandate returns the credential token captured by a
// prior payment attempt, or a PreconditionError. The OTP retry path
// needs it.
func (s *State) RequireSignedPaymentMandate() (string, error) {
	if s.SignedPaymentMandate == "" {
		return "", &PreconditionError{Missing: "no payment credential from a prior attempt"}
	}
	return s.SignedPaymentMandate, nil
}
