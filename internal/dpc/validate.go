package dpc

import (
	"strings"

	"github.com/agentic-commerce/shopping-assistant/internal/a2a"
)

// PaymentStatus enumerates the outcomes of a payment validation.
type PaymentStatus int

const (
	StatusSuccess PaymentStatus = iota
	StatusOtpRequired
	StatusFailure
)

// PaymentResult is the outcome of the DPC exchange: success, a pending
// challenge, or a failure with a human-readable reason.
type PaymentResult struct {
	Status  PaymentStatus
	Message string
}

func Success() PaymentResult {
	return PaymentResult{Status: StatusSuccess, Message: "Payment successful!"}
}

func OtpRequired(message string) PaymentResult {
	return PaymentResult{Status: StatusOtpRequired, Message: message}
}

func Failure(reason string) PaymentResult {
	return PaymentResult{Status: StatusFailure, Message: reason}
}

// successLiteral is the payment_status value as it appears on the wire,
// JSON quoting included. The comparison is byte-exact.
const successLiteral = `"SUCCESS"`

// ValidateResponse reads payment_status from the first data part of the
// envelope's first artifact. Exactly the literal "SUCCESS" maps to
// success; any other value, a missing field or a malformed envelope maps
// to a failure with a reason. Never faults.
func ValidateResponse(resp *a2a.RPCResponse) PaymentResult {
	raw, ok := paymentStatusRaw(resp)
	if !ok {
		return Failure("An error occurred during final payment validation.")
	}
	if raw == successLiteral {
		return Success()
	}
	return Failure("Payment validation failed.")
}

// StatusLiteral extracts the payment_status value with its JSON quoting
// stripped, for callers that need to inspect non-success statuses.
func StatusLiteral(resp *a2a.RPCResponse) (string, bool) {
	raw, ok := paymentStatusRaw(resp)
	if !ok {
		return "", false
	}
	return strings.Trim(raw, `"`), true
}

func paymentStatusRaw(resp *a2a.RPCResponse) (string, bool) {
	result, err := a2a.DecodeArtifacts(resp)
	if err != nil || len(result.Artifacts) == 0 {
		return "", false
	}
	part, ok := result.Artifacts[0].FirstDataPart()
	if !ok {
		return "", false
	}
	raw, ok := part.RawField("payment_status")
	if !ok {
		return "", false
	}
	return string(raw), true
}
