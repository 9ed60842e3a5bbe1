package domain

// ResolutionIntent is a request to resolve an ambiguous market reference.
// Every field is optional; the cascade decides which ones to act on.
type ResolutionIntent struct {
	// MarketID is a raw reference string: a URL, slug, id, or free text.
	MarketID string
	// MarketQuestion is the natural-language question the caller is asking
	// about, when known.
	MarketQuestion string
	// PolymarketUser is a wallet address associated with the request.
	PolymarketUser string
	// Query is free-form text from the conversation turn.
	Query string

	// ExistingMarket is the market resolved on a previous turn of the same
	// conversation, carried over from the context store.
	ExistingMarket *MarketRecord
}

// ResolutionSource tags which cascade stage produced a match.
type ResolutionSource string

const (
	SourceContext    ResolutionSource = "context"
	SourceMarketID   ResolutionSource = "marketId"
	SourceSlug       ResolutionSource = "slug"
	SourceEvent      ResolutionSource = "event"
	SourceToken      ResolutionSource = "token"
	SourceSimilarity ResolutionSource = "similarity"
	SourceSearch     ResolutionSource = "search"
)

// ResolvedMarket is the outcome of a successful resolution.
type ResolvedMarket struct {
	Market MarketRecord `json:"market"`
	// Similarity is 1.0 for structured-identifier matches and the lexical
	// score for text matches; always in [0,1].
	Similarity float64          `json:"similarity"`
	Source     ResolutionSource `json:"source"`
	// Event is set when the match came out of an event lookup.
	Event *EventRecord `json:"event,omitempty"`
}
