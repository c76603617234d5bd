package mandate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cart(id, label string, value float64) CartMandate {
	return CartMandate{
		Contents: CartContents{
			ID: id,
			PaymentRequest: PaymentRequest{
				Details: PaymentDetails{
					DisplayItems: []DisplayItem{
						{Label: label, Amount: Amount{Currency: "USD", Value: value}},
					},
					Total: DisplayItem{Label: "Total", Amount: Amount{Currency: "USD", Value: value}},
				},
			},
		},
	}
}

func TestNewIntentMandate(t *testing.T) {
	intent := NewIntentMandate("running shoes size 10")

	assert.True(t, intent.UserPromptRequired)
	assert.Equal(t, "running shoes size 10", intent.NaturalLanguageDescription)

	expiry, err := time.Parse(time.RFC3339, intent.IntentExpiry)
	require.NoError(t, err)
	remaining := time.Until(expiry)
	assert.Greater(t, remaining, 23*time.Hour)
	assert.LessOrEqual(t, remaining, IntentValidity)
}

func TestIntentMandateWireTags(t *testing.T) {
	raw, err := json.Marshal(NewIntentMandate("boots"))
	require.NoError(t, err)

	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.Contains(t, wire, "natural_language_description")
	assert.Contains(t, wire, "user_prompt_required")
	assert.Contains(t, wire, "intent_expiry")
	assert.NotContains(t, wire, "merchants")
}

func TestFindByLabel(t *testing.T) {
	carts := []CartMandate{
		cart("c1", "RunFast Shoes", 89.99),
		cart("c2", "TrailBlazer Sneakers", 129.50),
		cart("c3", "RunFast Shoes", 94.99),
	}

	found, ok := FindByLabel(carts, "TrailBlazer Sneakers")
	require.True(t, ok)
	assert.Equal(t, "c2", found.Contents.ID)

	// Duplicate labels resolve to the earliest entry.
	first, ok := FindByLabel(carts, "RunFast Shoes")
	require.True(t, ok)
	assert.Equal(t, "c1", first.Contents.ID)

	_, ok = FindByLabel(carts, "CityWalk Loafers")
	assert.False(t, ok)

	_, ok = FindByLabel(nil, "anything")
	assert.False(t, ok)
}

func TestCartMandateLabel(t *testing.T) {
	assert.Equal(t, "RunFast Shoes", cart("c1", "RunFast Shoes", 89.99).Label())
	assert.Equal(t, "", CartMandate{}.Label())
}

func TestCartMandateWrapperDecode(t *testing.T) {
	raw := []byte(`{
		"ap2.mandates.CartMandate": {
			"contents": {
				"id": "cart-42",
				"user_cart_confirmation_required": true,
				"merchant_name": "Shoe Store",
				"cart_expiry": "2026-09-01T00:00:00Z",
				"payment_request": {
					"method_data": [{"supported_methods": "basic-card"}],
					"details": {
						"id": "order-42",
						"display_items": [
							{"label": "RunFast Shoes", "amount": {"currency": "USD", "value": 89.99}}
						],
						"total": {"label": "Total", "amount": {"currency": "USD", "value": 103.86}}
					},
					"options": {"request_shipping": true}
				}
			}
		}
	}`)

	var wrapper CartMandateWrapper
	require.NoError(t, json.Unmarshal(raw, &wrapper))
	assert.Equal(t, "cart-42", wrapper.CartMandate.Contents.ID)
	assert.Equal(t, "Shoe Store", wrapper.CartMandate.Contents.MerchantName)
	assert.Equal(t, "RunFast Shoes", wrapper.CartMandate.Label())
	assert.InDelta(t, 103.86, wrapper.CartMandate.Contents.PaymentRequest.Details.Total.Amount.Value, 1e-9)
}
