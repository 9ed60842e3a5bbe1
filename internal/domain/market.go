package domain

import "time"

// Token is one tradable outcome side of a market's order book.
type Token struct {
	TokenID string `json:"tokenId"`
	Outcome string `json:"outcome,omitempty"`
}

// MarketRecord is the canonical representation of a tradable question from
// the Polymarket catalog. Optional numeric fields are pointers so that a
// missing value can be told apart from a genuine zero; the hydrator relies on
// that distinction to detect sparse catalog stubs.
type MarketRecord struct {
	ID          string `json:"id"`
	ConditionID string `json:"conditionId,omitempty"`
	Slug        string `json:"slug,omitempty"`

	Question    string `json:"question"`
	Description string `json:"description,omitempty"`

	// YesPrice and NoPrice are derived from OutcomePrices by the price
	// normalizer; both are in [0,1] once set.
	YesPrice *float64 `json:"yesPrice,omitempty"`
	NoPrice  *float64 `json:"noPrice,omitempty"`

	// Outcomes and OutcomePrices are the raw catalog arrays, already decoded
	// from their sometimes-JSON-encoded-string wire form at the platform
	// boundary.
	Outcomes      []string `json:"outcomes,omitempty"`
	OutcomePrices []string `json:"outcomePrices,omitempty"`

	Tokens []Token `json:"tokens,omitempty"`

	Liquidity  *float64 `json:"liquidity,omitempty"`
	Volume24hr *float64 `json:"volume24hr,omitempty"`

	EndDate *time.Time `json:"endDate,omitempty"`
}

// HasToken reports whether the market holds the given outcome token.
func (m *MarketRecord) HasToken(tokenID string) bool {
	if tokenID == "" {
		return false
	}
	for _, t := range m.Tokens {
		if t.TokenID == tokenID {
			return true
		}
	}
	return false
}

// SearchText returns the text a lexical matcher should score against.
func (m *MarketRecord) SearchText() string {
	if m.Description == "" {
		return m.Question
	}
	return m.Question + " " + m.Description
}

// EventRecord groups one or more related markets under a shared slug, e.g.
// every candidate market of an election event.
type EventRecord struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description string         `json:"description,omitempty"`
	Markets     []MarketRecord `json:"markets"`
}

// SearchResult is what the remote full-text search returns for a term: a
// candidate market, the event it belongs to, or both.
type SearchResult struct {
	Market *MarketRecord
	Event  *EventRecord
}
