package a2a

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAgentCard(t *testing.T) {
	raw := []byte(`{
		"name": "Merchant Agent",
		"description": "Sells shoes",
		"url": "http://localhost:8081",
		"skills": [
			{"id": "search", "name": "Product Search", "description": "Finds products"},
			{"id": "checkout", "name": "Checkout"}
		]
	}`)

	card, err := ParseAgentCard(raw)
	require.NoError(t, err)
	assert.Equal(t, "Merchant Agent", card.Name)
	assert.Equal(t, "http://localhost:8081", card.URL)
	assert.Equal(t, []string{"search", "checkout"}, card.SkillIDs())
}

func TestParseAgentCardMissingName(t *testing.T) {
	card, err := ParseAgentCard([]byte(`{"url": "http://x", "skills": []}`))
	assert.Nil(t, card)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, schemaErr.Error(), "name")
}

func TestParseAgentCardNotJSON(t *testing.T) {
	card, err := ParseAgentCard([]byte(`<html>not a card</html>`))
	assert.Nil(t, card)
	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}
