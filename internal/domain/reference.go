package domain

// RefType classifies what kind of identifier a raw user reference carries.
type RefType string

const (
	RefSlug        RefType = "slug"
	RefMarketID    RefType = "marketId"
	RefConditionID RefType = "conditionId"
	RefUUID        RefType = "uuid"
	RefQuery       RefType = "query"
)

// ReferenceHints is the parsed form of a raw user-supplied reference string.
// It is derived once per resolution call and never mutated afterwards.
type ReferenceHints struct {
	// Type is the primary classification of the input.
	Type RefType
	// Value is the extracted identifier, or the trimmed input for RefQuery.
	Value string

	// Slug is the event slug extracted from a Polymarket URL, if any.
	Slug string
	// MarketSlug is the market sub-path of an /event/{slug}/{marketSlug} URL.
	MarketSlug string
	// TokenID is the value of a "tid" URL query parameter, if present.
	TokenID string
}
