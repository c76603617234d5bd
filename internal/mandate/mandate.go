// Package mandate holds the typed commerce documents exchanged as A2A
// payloads: the user's shopping intent, the merchant's priced cart
// proposals and the payment-request details they carry.
package mandate

import (
	"time"
)

// Namespaced data-part keys under which mandates travel on the wire.
const (
	IntentMandateKey = "ap2.mandates.IntentMandate"
	CartMandateKey   = "ap2.mandates.CartMandate"
)

// IntentMandate captures the user's shopping intent for one product
// search.
type IntentMandate struct {
	UserPromptRequired         bool     `json:"user_prompt_required"`
	NaturalLanguageDescription string   `json:"natural_language_description"`
	Merchants                  []string `json:"merchants,omitempty"`
	SKUs                       []string `json:"skus,omitempty"`
	IntentExpiry               string   `json:"intent_expiry"`
}

// IntentValidity is how long a freshly minted intent stays actionable.
const IntentValidity = 24 * time.Hour

// NewIntentMandate builds an intent for the given description, expiring
// IntentValidity from now.
func NewIntentMandate(description string) IntentMandate {
	return IntentMandate{
		UserPromptRequired:         true,
		NaturalLanguageDescription: description,
		IntentExpiry:               time.Now().UTC().Add(IntentValidity).Format(time.RFC3339),
	}
}

// CartMandateWrapper is the namespaced envelope the merchant returns a
// cart mandate in.
type CartMandateWrapper struct {
	CartMandate CartMandate `json:"ap2.mandates.CartMandate"`
}

// CartMandate is a priced, merchant-issued proposal. Mandates are
// immutable snapshots; each cart-mutating call returns a fresh one.
type CartMandate struct {
	Contents              CartContents `json:"contents"`
	MerchantAuthorization string       `json:"merchant_authorization,omitempty"`
}

type CartContents struct {
	ID                           string         `json:"id"`
	UserCartConfirmationRequired bool           `json:"user_cart_confirmation_required"`
	PaymentRequest               PaymentRequest `json:"payment_request"`
	CartExpiry                   string         `json:"cart_expiry"`
	MerchantName                 string         `json:"merchant_name"`
}

type PaymentRequest struct {
	MethodData      []PaymentMethodData `json:"method_data"`
	Details         PaymentDetails      `json:"details"`
	Options         PaymentOptions      `json:"options"`
	ShippingAddress *ShippingAddress    `json:"shipping_address,omitempty"`
}

type PaymentMethodData struct {
	SupportedMethods string             `json:"supported_methods"`
	Data             *PaymentMethodInfo `json:"data,omitempty"`
}

type PaymentMethodInfo struct {
	PaymentProcessorURL string   `json:"payment_processor_url,omitempty"`
	Network             []string `json:"network"`
	CardholderName      string   `json:"cardholder_name,omitempty"`
}

type PaymentDetails struct {
	ID              string           `json:"id"`
	DisplayItems    []DisplayItem    `json:"display_items"`
	ShippingOptions []ShippingOption `json:"shipping_options,omitempty"`
	Total           DisplayItem      `json:"total"`
}

type DisplayItem struct {
	Label        string `json:"label"`
	Amount       Amount `json:"amount"`
	RefundPeriod int    `json:"refund_period,omitempty"`
}

type Amount struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

type ShippingOption struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Amount   Amount `json:"amount"`
	Selected bool   `json:"selected"`
}

type PaymentOptions struct {
	RequestPayerName  bool   `json:"request_payer_name"`
	RequestPayerEmail bool   `json:"request_payer_email"`
	RequestPayerPhone bool   `json:"request_payer_phone"`
	RequestShipping   bool   `json:"request_shipping"`
	ShippingType      string `json:"shipping_type,omitempty"`
}

// ShippingAddress is the merchant-side address shape attached to a
// payment request.
type ShippingAddress struct {
	City         string   `json:"city,omitempty"`
	Country      string   `json:"country,omitempty"`
	AddressLine  []string `json:"address_line,omitempty"`
	PostalCode   string   `json:"postal_code,omitempty"`
	Recipient    string   `json:"recipient,omitempty"`
	Organization string   `json:"organization,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Region       string   `json:"region,omitempty"`
}

// ContactAddress is the client-side address supplied by a lookup or
// typed in by the user.
type ContactAddress struct {
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zipCode"`
}

// Label returns the primary display-item label of a cart mandate, the
// name products are selected by.
func (c CartMandate) Label() string {
	items := c.Contents.PaymentRequest.Details.DisplayItems
	if len(items) == 0 {
		return ""
	}
	return items[0].Label
}

// FindByLabel scans carts in insertion order and returns the first one
// whose primary display-item label equals label. The second return is
// false when nothing matches.
func FindByLabel(carts []CartMandate, label string) (*CartMandate, bool) {
	for i := range carts {
		if carts[i].Label() == label {
			return &carts[i], true
		}
	}
	return nil, false
}
