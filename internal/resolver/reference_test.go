package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyresolver/internal/domain"
)

func TestParseReference_ConditionID(t *testing.T) {
	id := "0x" + "ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12"
	h := ParseReference(id)
	assert.Equal(t, domain.RefConditionID, h.Type)
	assert.Equal(t, id, h.Value)
}

func TestParseReference_UUID(t *testing.T) {
	h := ParseReference("4b9f9a2e-7c1d-4f6a-9b0e-2d8c5a1f3e7b")
	assert.Equal(t, domain.RefUUID, h.Type)
}

func TestParseReference_NumericID(t *testing.T) {
	h := ParseReference("529460")
	assert.Equal(t, domain.RefMarketID, h.Type)
	assert.Equal(t, "529460", h.Value)
}

func TestParseReference_Slug(t *testing.T) {
	h := ParseReference("will-btc-hit-100k")
	assert.Equal(t, domain.RefSlug, h.Type)
	assert.Equal(t, "will-btc-hit-100k", h.Slug)
}

func TestParseReference_EventURL(t *testing.T) {
	h := ParseReference("https://polymarket.com/event/presidential-election-2028")
	require.Equal(t, domain.RefSlug, h.Type)
	assert.Equal(t, "presidential-election-2028", h.Slug)
	assert.Empty(t, h.MarketSlug)
}

func TestParseReference_EventURLWithMarketAndToken(t *testing.T) {
	h := ParseReference("https://polymarket.com/event/presidential-election-2028/will-the-democrat-win?tid=123456789")
	require.Equal(t, domain.RefSlug, h.Type)
	assert.Equal(t, "presidential-election-2028", h.Slug)
	assert.Equal(t, "will-the-democrat-win", h.MarketSlug)
	assert.Equal(t, "123456789", h.TokenID)
}

func TestParseReference_MarketURL(t *testing.T) {
	h := ParseReference("https://www.polymarket.com/market/will-btc-hit-100k")
	require.Equal(t, domain.RefSlug, h.Type)
	assert.Equal(t, "will-btc-hit-100k", h.Slug)
}

func TestParseReference_ForeignURLDegradesToQuery(t *testing.T) {
	h := ParseReference("https://example.com/event/some-slug")
	assert.Equal(t, domain.RefQuery, h.Type)
	assert.Equal(t, "https://example.com/event/some-slug", h.Value)
}

func TestParseReference_MalformedURLDegradesToQuery(t *testing.T) {
	h := ParseReference("https://polymarket.com/event")
	assert.Equal(t, domain.RefQuery, h.Type)
}

func TestParseReference_FreeText(t *testing.T) {
	h := ParseReference("will bitcoin hit 100k this year")
	assert.Equal(t, domain.RefQuery, h.Type)
	assert.Equal(t, "will bitcoin hit 100k this year", h.Value)
}

func TestParseReference_TrimsWhitespace(t *testing.T) {
	h := ParseReference("  529460  ")
	assert.Equal(t, domain.RefMarketID, h.Type)
	assert.Equal(t, "529460", h.Value)
}

func TestParseReference_Empty(t *testing.T) {
	h := ParseReference("   ")
	assert.Equal(t, domain.RefQuery, h.Type)
	assert.Empty(t, h.Value)
}

func TestParseReference_SingleWordIsQueryNotSlug(t *testing.T) {
	// The slug shape needs at least one hyphen.
	h := ParseReference("bitcoin")
	assert.Equal(t, domain.RefQuery, h.Type)
}
