// Package resolver implements the market reference resolution engine: a
// prioritized cascade of identification strategies that turns an ambiguous
// user-supplied reference (URL, slug, id, wallet, free text) into a single
// canonical market record.
package resolver

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/alanyoungcy/polyresolver/internal/domain"
)

var (
	conditionIDRe = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
	numericIDRe   = regexp.MustCompile(`^[0-9]+$`)
	slugShapeRe   = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)+$`)
)

// ParseReference classifies a raw input string into reference hints. It fails
// soft: malformed input always degrades to a free-text query, never an error.
// Recognized shapes, in order: Polymarket event/market URLs (including a
// "tid" query parameter mapped to a token-id hint), 0x-prefixed 64-hex
// condition ids, 36-character UUIDs, all-digit market ids, and hyphenated
// slugs. Anything else, including URLs on foreign hosts, is opaque text.
func ParseReference(input string) domain.ReferenceHints {
	trimmed := strings.TrimSpace(input)
	query := domain.ReferenceHints{Type: domain.RefQuery, Value: trimmed}
	if trimmed == "" {
		return query
	}

	if strings.Contains(trimmed, "://") {
		h, ok := parseMarketURL(trimmed)
		if !ok {
			return query
		}
		return h
	}

	switch {
	case conditionIDRe.MatchString(trimmed):
		return domain.ReferenceHints{Type: domain.RefConditionID, Value: trimmed}
	case len(trimmed) == 36 && uuid.Validate(trimmed) == nil:
		return domain.ReferenceHints{Type: domain.RefUUID, Value: trimmed}
	case numericIDRe.MatchString(trimmed):
		return domain.ReferenceHints{Type: domain.RefMarketID, Value: trimmed}
	case slugShapeRe.MatchString(trimmed):
		return domain.ReferenceHints{Type: domain.RefSlug, Value: trimmed, Slug: trimmed}
	default:
		return query
	}
}

// parseMarketURL extracts slug hints from a Polymarket-shaped URL. URLs on
// any other host are not parsed for hints.
func parseMarketURL(raw string) (domain.ReferenceHints, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return domain.ReferenceHints{}, false
	}

	host := strings.ToLower(u.Hostname())
	if host != "polymarket.com" && !strings.HasSuffix(host, ".polymarket.com") {
		return domain.ReferenceHints{}, false
	}

	var segs []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}

	h := domain.ReferenceHints{TokenID: u.Query().Get("tid")}

	for i, s := range segs {
		switch s {
		case "event":
			if i+1 < len(segs) {
				h.Type = domain.RefSlug
				h.Slug = segs[i+1]
				h.Value = segs[i+1]
				if i+2 < len(segs) {
					h.MarketSlug = segs[i+2]
				}
				return h, true
			}
		case "market":
			if i+1 < len(segs) {
				h.Type = domain.RefSlug
				h.Slug = segs[i+1]
				h.Value = segs[i+1]
				return h, true
			}
		}
	}

	return domain.ReferenceHints{}, false
}
