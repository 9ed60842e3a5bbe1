package polymarket

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/alanyoungcy/polyresolver/internal/domain"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexStrings unmarshals a field the Gamma API sends either as a JSON array
// or as a JSON-encoded string containing an array, e.g. "[\"Yes\",\"No\"]".
// A string that fails to decode as an array is kept verbatim as a single
// element rather than dropped.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*f = arr
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.HasPrefix(strings.TrimSpace(s), "[") {
		if err := json.Unmarshal([]byte(s), &arr); err == nil {
			*f = arr
			return nil
		}
	}
	if s == "" {
		*f = nil
		return nil
	}
	*f = []string{s}
	return nil
}

// flexFloat unmarshals from a JSON number or a numeric string; Gamma sends
// liquidity and volume either way.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = flexFloat(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	if err := json.Unmarshal([]byte(s), &v); err != nil { // numeric string
		return err
	}
	*f = flexFloat(v)
	return nil
}

// --------------------------------------------------------------------------
// Gamma API DTOs
// --------------------------------------------------------------------------

// APIMarket represents a market as returned by the Polymarket Gamma API.
type APIMarket struct {
	ID            string      `json:"id"`
	Question      string      `json:"question"`
	ConditionID   string      `json:"conditionId"`
	Slug          string      `json:"slug"`
	Description   string      `json:"description"`
	Outcomes      flexStrings `json:"outcomes"`      // may arrive JSON-encoded: "[\"Yes\",\"No\"]"
	OutcomePrices flexStrings `json:"outcomePrices"` // may arrive JSON-encoded: "[\"0.5\",\"0.5\"]"
	ClobTokenIDs  flexStrings `json:"clobTokenIds"`  // may arrive JSON-encoded
	Tokens        []APIToken  `json:"tokens"`
	Liquidity     *flexFloat  `json:"liquidity"`
	Volume24hr    *flexFloat  `json:"volume24hr"`
	Active        flexBool    `json:"active"`
	Closed        flexBool    `json:"closed"`
	EndDate       string      `json:"endDate"`
	EndDateISO    string      `json:"endDateIso"`
}

// APIToken is a token entry inside a Gamma market response.
type APIToken struct {
	TokenID string `json:"token_id"`
	Outcome string `json:"outcome"`
}

// APIEvent represents an event as returned by the Gamma API. An event groups
// one or more related markets under a shared slug.
type APIEvent struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	Markets     []APIMarket `json:"markets"`
}

// APISearchResponse is the /public-search payload; only the event hits carry
// resolvable markets.
type APISearchResponse struct {
	Events []APIEvent `json:"events"`
}

// --------------------------------------------------------------------------
// Conversion helpers: API types -> domain types
// --------------------------------------------------------------------------

// ToDomainMarket converts a Gamma APIMarket to a domain.MarketRecord. Yes/no
// prices are left unset; deriving them from the raw outcome arrays is the
// price normalizer's job.
func (m *APIMarket) ToDomainMarket() domain.MarketRecord {
	dm := domain.MarketRecord{
		ID:            m.ID,
		ConditionID:   m.ConditionID,
		Slug:          m.Slug,
		Question:      m.Question,
		Description:   m.Description,
		Outcomes:      []string(m.Outcomes),
		OutcomePrices: []string(m.OutcomePrices),
	}

	for _, t := range m.Tokens {
		if t.TokenID == "" {
			continue
		}
		dm.Tokens = append(dm.Tokens, domain.Token{TokenID: t.TokenID, Outcome: t.Outcome})
	}
	// Bulk listings carry token ids as a flat array instead of token objects;
	// align outcomes by index.
	if len(dm.Tokens) == 0 {
		for i, id := range m.ClobTokenIDs {
			tok := domain.Token{TokenID: id}
			if i < len(m.Outcomes) {
				tok.Outcome = m.Outcomes[i]
			}
			dm.Tokens = append(dm.Tokens, tok)
		}
	}

	if m.Liquidity != nil {
		v := float64(*m.Liquidity)
		dm.Liquidity = &v
	}
	if m.Volume24hr != nil {
		v := float64(*m.Volume24hr)
		dm.Volume24hr = &v
	}

	end := m.EndDateISO
	if end == "" {
		end = m.EndDate
	}
	if end != "" {
		if t, err := time.Parse(time.RFC3339, end); err == nil {
			dm.EndDate = &t
		}
	}

	return dm
}

// ToDomainEvent converts a Gamma APIEvent to a domain.EventRecord.
func (e *APIEvent) ToDomainEvent() domain.EventRecord {
	ev := domain.EventRecord{
		ID:          e.ID,
		Title:       e.Title,
		Slug:        e.Slug,
		Description: e.Description,
	}
	ev.Markets = make([]domain.MarketRecord, 0, len(e.Markets))
	for i := range e.Markets {
		ev.Markets = append(ev.Markets, e.Markets[i].ToDomainMarket())
	}
	return ev
}
