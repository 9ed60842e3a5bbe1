package resolver

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/google/uuid"

	"github.com/alanyoungcy/polyresolver/internal/domain"
)

var (
	hex64Re      = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)
	yesOutcomeRe = regexp.MustCompile(`(?i)yes|over|win`)
)

// looksOpaqueID reports whether an identifier is a UUID or a 64-hex
// condition hash, i.e. the id shapes that bulk catalog listings return as
// sparse stubs.
func looksOpaqueID(s string) bool {
	if s == "" {
		return false
	}
	if len(s) == 36 && uuid.Validate(s) == nil {
		return true
	}
	return hex64Re.MatchString(s)
}

// NeedsHydration reports whether a market record is a sparse catalog stub
// that requires a targeted detail fetch: its id or condition id looks opaque
// AND it is missing one of yesPrice/volume24hr/liquidity or has no tokens.
func NeedsHydration(m *domain.MarketRecord) bool {
	if !looksOpaqueID(m.ID) && !looksOpaqueID(m.ConditionID) {
		return false
	}
	return m.YesPrice == nil || m.Volume24hr == nil || m.Liquidity == nil || len(m.Tokens) == 0
}

// Hydrator enriches sparse market records through a targeted provider fetch
// and normalizes outcome-price encoding on every record it touches.
type Hydrator struct {
	provider domain.MarketDataProvider
	logger   *slog.Logger
}

// NewHydrator creates a Hydrator.
func NewHydrator(provider domain.MarketDataProvider, logger *slog.Logger) *Hydrator {
	return &Hydrator{provider: provider, logger: logger}
}

// Hydrate returns a fully populated copy of m. Sparse records trigger one
// detail fetch; the detailed fields win a shallow merge over the original.
// A fetch failure is never fatal: the original record is normalized and
// returned as-is.
func (h *Hydrator) Hydrate(ctx context.Context, m domain.MarketRecord) domain.MarketRecord {
	if !NeedsHydration(&m) {
		NormalizePrices(&m)
		return m
	}

	id := m.ID
	if id == "" {
		id = m.ConditionID
	}
	if id == "" {
		NormalizePrices(&m)
		return m
	}

	detailed, err := h.provider.FetchMarketByID(ctx, id)
	if err != nil {
		h.logger.DebugContext(ctx, "resolver: hydration fetch failed, using sparse record",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		NormalizePrices(&m)
		return m
	}

	merged := mergeRecords(m, detailed)
	NormalizePrices(&merged)
	return merged
}

// mergeRecords shallow-merges detailed over base: every field the detailed
// record populates wins, everything it leaves empty is kept from base.
func mergeRecords(base, detailed domain.MarketRecord) domain.MarketRecord {
	out := base

	if detailed.ID != "" {
		out.ID = detailed.ID
	}
	if detailed.ConditionID != "" {
		out.ConditionID = detailed.ConditionID
	}
	if detailed.Slug != "" {
		out.Slug = detailed.Slug
	}
	if detailed.Question != "" {
		out.Question = detailed.Question
	}
	if detailed.Description != "" {
		out.Description = detailed.Description
	}
	if detailed.YesPrice != nil {
		out.YesPrice = detailed.YesPrice
	}
	if detailed.NoPrice != nil {
		out.NoPrice = detailed.NoPrice
	}
	if len(detailed.Outcomes) > 0 {
		out.Outcomes = detailed.Outcomes
	}
	if len(detailed.OutcomePrices) > 0 {
		out.OutcomePrices = detailed.OutcomePrices
	}
	if len(detailed.Tokens) > 0 {
		out.Tokens = detailed.Tokens
	}
	if detailed.Liquidity != nil {
		out.Liquidity = detailed.Liquidity
	}
	if detailed.Volume24hr != nil {
		out.Volume24hr = detailed.Volume24hr
	}
	if detailed.EndDate != nil {
		out.EndDate = detailed.EndDate
	}

	return out
}

// NormalizePrices derives YesPrice/NoPrice from the raw outcome arrays. The
// "yes" index is the first outcome label matching yes/over/win (default 0);
// the complementary index supplies NoPrice, falling back to 1 - YesPrice when
// absent. Both sides end up clamped to [0,1] and summing to 1 whenever only
// one side was known.
func NormalizePrices(m *domain.MarketRecord) {
	yesIdx := 0
	for i, o := range m.Outcomes {
		if yesOutcomeRe.MatchString(o) {
			yesIdx = i
			break
		}
	}

	if m.YesPrice == nil && yesIdx < len(m.OutcomePrices) {
		if v, err := strconv.ParseFloat(m.OutcomePrices[yesIdx], 64); err == nil {
			m.YesPrice = &v
		}
	}
	if m.YesPrice == nil {
		return
	}

	yes := clamp01(*m.YesPrice)
	m.YesPrice = &yes

	if m.NoPrice == nil {
		noIdx := complementaryIndex(yesIdx, len(m.OutcomePrices))
		if noIdx >= 0 {
			if v, err := strconv.ParseFloat(m.OutcomePrices[noIdx], 64); err == nil {
				no := clamp01(v)
				m.NoPrice = &no
			}
		}
	}
	if m.NoPrice == nil {
		no := clamp01(1 - yes)
		m.NoPrice = &no
	}
}

// complementaryIndex picks the "no" side index for a given yes index, or -1
// when the price array has no second entry to draw from.
func complementaryIndex(yesIdx, n int) int {
	if n < 2 {
		return -1
	}
	if yesIdx == 0 {
		return 1
	}
	return yesIdx - 1
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
