package polymarket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexBool(t *testing.T) {
	var f flexBool

	require.NoError(t, json.Unmarshal([]byte(`true`), &f))
	assert.True(t, bool(f))

	require.NoError(t, json.Unmarshal([]byte(`"true"`), &f))
	assert.True(t, bool(f))

	require.NoError(t, json.Unmarshal([]byte(`"false"`), &f))
	assert.False(t, bool(f))

	require.NoError(t, json.Unmarshal([]byte(`"1"`), &f))
	assert.True(t, bool(f))
}

func TestFlexStrings(t *testing.T) {
	t.Run("plain array", func(t *testing.T) {
		var f flexStrings
		require.NoError(t, json.Unmarshal([]byte(`["Yes","No"]`), &f))
		assert.Equal(t, flexStrings{"Yes", "No"}, f)
	})

	t.Run("json-encoded string array", func(t *testing.T) {
		var f flexStrings
		require.NoError(t, json.Unmarshal([]byte(`"[\"Yes\",\"No\"]"`), &f))
		assert.Equal(t, flexStrings{"Yes", "No"}, f)
	})

	t.Run("bare string kept verbatim", func(t *testing.T) {
		var f flexStrings
		require.NoError(t, json.Unmarshal([]byte(`"Yes"`), &f))
		assert.Equal(t, flexStrings{"Yes"}, f)
	})

	t.Run("empty string yields nil", func(t *testing.T) {
		var f flexStrings
		require.NoError(t, json.Unmarshal([]byte(`""`), &f))
		assert.Nil(t, []string(f))
	})
}

func TestFlexFloat(t *testing.T) {
	var f flexFloat

	require.NoError(t, json.Unmarshal([]byte(`123.45`), &f))
	assert.InDelta(t, 123.45, float64(f), 1e-9)

	require.NoError(t, json.Unmarshal([]byte(`"678.9"`), &f))
	assert.InDelta(t, 678.9, float64(f), 1e-9)

	require.NoError(t, json.Unmarshal([]byte(`""`), &f))
	assert.Zero(t, float64(f))

	assert.Error(t, json.Unmarshal([]byte(`"not a number"`), &f))
}

func TestToDomainMarket_BulkListingShape(t *testing.T) {
	raw := `{
		"id": "529460",
		"question": "Will BTC reach $100,000 by 2025?",
		"conditionId": "0xab12",
		"slug": "will-btc-hit-100k",
		"outcomes": "[\"Yes\",\"No\"]",
		"outcomePrices": "[\"0.65\",\"0.35\"]",
		"clobTokenIds": "[\"111\",\"222\"]",
		"liquidity": "40000.5",
		"volume24hr": 120000,
		"active": "true",
		"endDateIso": "2025-12-31T00:00:00Z"
	}`

	var api APIMarket
	require.NoError(t, json.Unmarshal([]byte(raw), &api))

	m := api.ToDomainMarket()
	assert.Equal(t, "529460", m.ID)
	assert.Equal(t, []string{"Yes", "No"}, m.Outcomes)
	assert.Equal(t, []string{"0.65", "0.35"}, m.OutcomePrices)

	// Flat clobTokenIds align with outcomes by index.
	require.Len(t, m.Tokens, 2)
	assert.Equal(t, "111", m.Tokens[0].TokenID)
	assert.Equal(t, "Yes", m.Tokens[0].Outcome)
	assert.Equal(t, "222", m.Tokens[1].TokenID)
	assert.Equal(t, "No", m.Tokens[1].Outcome)

	require.NotNil(t, m.Liquidity)
	assert.InDelta(t, 40000.5, *m.Liquidity, 1e-9)
	require.NotNil(t, m.Volume24hr)
	assert.InDelta(t, 120000, *m.Volume24hr, 1e-9)

	require.NotNil(t, m.EndDate)
	assert.Equal(t, 2025, m.EndDate.Year())

	// Prices stay raw; normalization happens in the resolver.
	assert.Nil(t, m.YesPrice)
	assert.Nil(t, m.NoPrice)
}

func TestToDomainMarket_DetailShapeWithTokenObjects(t *testing.T) {
	raw := `{
		"id": "529460",
		"question": "Will BTC reach $100,000 by 2025?",
		"outcomes": ["Yes","No"],
		"tokens": [
			{"token_id": "111", "outcome": "Yes"},
			{"token_id": "222", "outcome": "No"}
		]
	}`

	var api APIMarket
	require.NoError(t, json.Unmarshal([]byte(raw), &api))

	m := api.ToDomainMarket()
	require.Len(t, m.Tokens, 2)
	assert.Equal(t, "111", m.Tokens[0].TokenID)
	assert.Equal(t, "Yes", m.Tokens[0].Outcome)
}

func TestToDomainEvent(t *testing.T) {
	raw := `{
		"id": "ev1",
		"title": "Presidential Election 2028",
		"slug": "presidential-election-2028",
		"markets": [
			{"id": "1", "question": "Will the Democrat win?"},
			{"id": "2", "question": "Will the Republican win?"}
		]
	}`

	var api APIEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &api))

	ev := api.ToDomainEvent()
	assert.Equal(t, "presidential-election-2028", ev.Slug)
	require.Len(t, ev.Markets, 2)
	assert.Equal(t, "Will the Democrat win?", ev.Markets[0].Question)
}
