// Package shopping implements the tool handlers the planner dispatches
// to: product search, selection, shipping and the DPC payment exchange.
// Each handler reads and writes the session state it needs and, except
// for the local address lookup, talks to the merchant agent.
package shopping

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/agentic-commerce/shopping-assistant/internal/a2a"
	"github.com/agentic-commerce/shopping-assistant/internal/a2aclient"
	"github.com/agentic-commerce/shopping-assistant/internal/dpc"
	"github.com/agentic-commerce/shopping-assistant/internal/mandate"
	"github.com/agentic-commerce/shopping-assistant/internal/session"
	"github.com/agentic-commerce/shopping-assistant/internal/wallet"
)

// ErrNotFound reports a typed miss from a lookup, e.g. selecting an item
// name that is not among the current product options.
type ErrNotFound struct {
	What string
}

func (e *ErrNotFound) Error() string { return fmt.Sprintf("%s not found", e.What) }

// Tools bundles the collaborators every handler shares. The merchant
// client is the one field written from outside the session's own
// goroutine (the settings surface swaps it on URL change), so access
// goes through the guarded accessors.
type Tools struct {
	Wallet wallet.Broker
	Logger *logrus.Logger

	mu     sync.RWMutex
	client *a2aclient.Client
}

func NewTools(client *a2aclient.Client, broker wallet.Broker, logger *logrus.Logger) *Tools {
	if logger == nil {
		logger = logrus.New()
	}
	return &Tools{client: client, Wallet: broker, Logger: logger}
}

// SetClient swaps the merchant agent connection, e.g. after the agent
// URL setting changed and re-discovery succeeded. Safe to call while a
// turn is in flight; handlers already running keep the client they
// started with.
func (t *Tools) SetClient(client *a2aclient.Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.client = client
}

// Client returns the current merchant connection, nil before the first
// successful discovery.
func (t *Tools) Client() *a2aclient.Client {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.client
}

// FindProducts sends the user's intent to the merchant and fills the
// session's offer set with the returned cart mandates. The first
// successful search establishes the shopping context id reused by every
// later message.
func (t *Tools) FindProducts(ctx context.Context, state *session.State, description string) ([]mandate.CartMandate, error) {
	t.Logger.Debugf("Searching for products matching %q", description)

	intent := mandate.NewIntentMandate(description)
	state.IntentMandate = &intent

	// The context id is only committed once the search succeeds; a
	// failed first search must not establish a session.
	contextID := state.ShoppingContextID
	if contextID == "" {
		contextID = uuid.New().String()
	}

	msg := a2a.NewMessageBuilder().
		AddText("Find products that match the user's IntentMandate.").
		AddData(mandate.IntentMandateKey, intent).
		SetContextID(contextID).
		Build()

	resp, err := t.Client().SendMessage(ctx, msg)
	if err != nil {
		return nil, err
	}

	result, err := a2a.DecodeArtifacts(resp)
	if err != nil {
		return nil, err
	}

	// Every artifact is one cart mandate proposal.
	var options []mandate.CartMandate
	for _, artifact := range result.Artifacts {
		part, ok := artifact.FirstDataPart()
		if !ok {
			continue
		}
		var wrapper mandate.CartMandateWrapper
		if err := part.DecodeInto(&wrapper); err != nil {
			t.Logger.Warnf("Skipping undecodable product artifact %s: %v", artifact.ArtifactID, err)
			continue
		}
		options = append(options, wrapper.CartMandate)
	}

	state.ShoppingContextID = contextID
	state.ProductOptions = options
	t.Logger.Infof("Product search returned %d options", len(options))
	return options, nil
}

// SelectProduct picks a cart mandate from the current offer set by its
// primary display-item label.
func (t *Tools) SelectProduct(state *session.State, itemName string) (*mandate.CartMandate, error) {
	cart, ok := mandate.FindByLabel(state.ProductOptions, itemName)
	if !ok {
		return nil, &ErrNotFound{What: fmt.Sprintf("item %q", itemName)}
	}
	state.CartMandate = cart
	t.Logger.Infof("Selected product %q", cart.Label())
	return cart, nil
}

// mockAddress stands in for a credential-provider address lookup.
var mockAddress = mandate.ContactAddress{
	StreetAddress: "456 Oak Ave",
	City:          "Otherville",
	State:         "NY",
	ZipCode:       "54321",
}

// GetShippingAddress resolves the user's shipping address. Local only;
// no merchant call.
func (t *Tools) GetShippingAddress(state *session.State, email string) mandate.ContactAddress {
	t.Logger.Debugf("Looking up shipping address for %s", email)
	address := mockAddress
	state.ShippingAddress = &address
	return address
}

// UpdateCart sends the captured shipping address to the merchant and
// replaces the session's cart mandate with the repriced one the
// merchant returns. The old mandate is never mutated in place.
func (t *Tools) UpdateCart(ctx context.Context, state *session.State) (*mandate.CartMandate, error) {
	contextID, err := state.RequireContext()
	if err != nil {
		return nil, err
	}
	cart, err := state.RequireCart()
	if err != nil {
		return nil, err
	}
	address, err := state.RequireShippingAddress()
	if err != nil {
		return nil, err
	}

	msg := a2a.NewMessageBuilder().
		AddText("Update the cart with the user's shipping address.").
		AddData("cart_id", cart.Contents.ID).
		AddData("shipping_address", *address).
		SetContextID(contextID).
		Build()

	resp, err := t.Client().SendMessage(ctx, msg)
	if err != nil {
		return nil, err
	}

	result, err := a2a.DecodeArtifacts(resp)
	if err != nil {
		return nil, err
	}
	if len(result.Artifacts) == 0 {
		return nil, &a2a.SchemaError{What: "cart update response", Missing: "artifacts"}
	}
	part, ok := result.Artifacts[0].FirstDataPart()
	if !ok {
		return nil, &a2a.SchemaError{What: "cart update response", Missing: "data part"}
	}
	var wrapper mandate.CartMandateWrapper
	if err := part.DecodeInto(&wrapper); err != nil {
		return nil, err
	}

	state.CartMandate = &wrapper.CartMandate
	t.Logger.Info("Cart updated with shipping address")
	return &wrapper.CartMandate, nil
}

// RetrieveDPCOptions runs the whole payment exchange: build the
// presentation request, obtain a credential token from the wallet, hand
// the token to the merchant and interpret the validation verdict. A
// merchant verdict of OTP_REQUIRED surfaces as a pending challenge so
// the planner can collect the code and retry.
func (t *Tools) RetrieveDPCOptions(ctx context.Context, state *session.State) (dpc.PaymentResult, error) {
	cart, err := state.RequireCart()
	if err != nil {
		return dpc.PaymentResult{}, err
	}

	requestJSON, err := dpc.BuildRequest(*cart, cart.Contents.MerchantName)
	if err != nil {
		return dpc.Failure(fmt.Sprintf("Could not build payment request: %v", err)), nil
	}
	state.DPCRequest = requestJSON

	if claims, present, err := mandate.AuthorizationClaims(*cart); err != nil {
		t.Logger.Warnf("Cart carries an undecodable merchant authorization: %v", err)
	} else if present {
		t.Logger.Debugf("Merchant authorization claims: %v", claims)
	}

	token, err := t.Wallet.GetCredential(ctx, requestJSON)
	if err != nil {
		if errors.Is(err, wallet.ErrUserCancelled) {
			return dpc.Failure("User cancelled the payment."), nil
		}
		return dpc.Failure(fmt.Sprintf("Credential broker failed: %v", err)), nil
	}
	state.SignedPaymentMandate = token

	t.Logger.Info("Sending DPC response to merchant for validation")
	return t.validateWithMerchant(ctx, state, token, "")
}

// InitiatePaymentWithOTP retries validation of the previously captured
// credential token, attaching the one-time password the user supplied.
func (t *Tools) InitiatePaymentWithOTP(ctx context.Context, state *session.State, otp string) (dpc.PaymentResult, error) {
	token, err := state.RequireSignedPaymentMandate()
	if err != nil {
		return dpc.PaymentResult{}, err
	}
	t.Logger.Info("Retrying payment validation with OTP")
	return t.validateWithMerchant(ctx, state, token, otp)
}

func (t *Tools) validateWithMerchant(ctx context.Context, state *session.State, token, otp string) (dpc.PaymentResult, error) {
	builder := a2a.NewMessageBuilder().
		AddText("Validate the Digital Payment Credentials (DPC) response").
		AddData("dpc_response", token)
	if otp != "" {
		builder.AddData("otp", otp)
	}
	if state.ShoppingContextID != "" {
		builder.SetContextID(state.ShoppingContextID)
	}

	resp, err := t.Client().SendMessage(ctx, builder.Build())
	if err != nil {
		return dpc.PaymentResult{}, err
	}

	result := dpc.ValidateResponse(resp)
	if result.Status == dpc.StatusFailure {
		if literal, ok := dpc.StatusLiteral(resp); ok && literal == "OTP_REQUIRED" {
			return dpc.OtpRequired("The merchant requires a one-time password to finish this payment."), nil
		}
	}
	return result, nil
}
