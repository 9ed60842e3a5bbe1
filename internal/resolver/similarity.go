package resolver

import (
	_ "embed"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/alanyoungcy/polyresolver/internal/domain"
)

// DefaultMinSimilarity is the score below which a free-text match is
// discarded. Hand-tuned, not derived; override it through MatchOptions.
const DefaultMinSimilarity = 0.15

//go:embed synonyms.yaml
var synonymsYAML []byte

var (
	cachedSynonyms map[string][]string
	synonymsOnce   sync.Once
)

// loadSynonyms parses the embedded expansion table once and caches it. A
// parse failure degrades to no expansion rather than stopping resolution.
func loadSynonyms() map[string][]string {
	synonymsOnce.Do(func() {
		var raw map[string][]string
		if err := yaml.Unmarshal(synonymsYAML, &raw); err != nil {
			slog.Warn("resolver: synonym table failed to load, continuing without expansion",
				slog.String("error", err.Error()),
			)
			raw = map[string][]string{}
		}
		cachedSynonyms = raw
	})
	return cachedSynonyms
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "has": true,
	"have": true, "what": true, "when": true, "where": true, "will": true,
	"with": true, "this": true, "that": true, "from": true, "they": true,
	"been": true, "does": true, "did": true, "how": true, "who": true,
	"which": true, "would": true, "could": true, "should": true,
	"there": true, "their": true, "about": true, "than": true,
	"before": true, "after": true, "above": true, "below": true,
}

var tokenSplitRe = regexp.MustCompile(`[^a-z0-9$]+`)

// ExpandKeywords lower-cases and tokenizes a query, discards stop-words and
// tokens of length <= 2, and unions each survivor with its synonym-table
// expansion. Order is first-seen; the result carries no duplicates.
func ExpandKeywords(query string) []string {
	synonyms := loadSynonyms()

	var out []string
	seen := map[string]bool{}
	add := func(kw string) {
		if kw != "" && !seen[kw] {
			seen[kw] = true
			out = append(out, kw)
		}
	}

	for _, tok := range tokenSplitRe.Split(strings.ToLower(query), -1) {
		if len(tok) <= 2 || stopwords[tok] {
			continue
		}
		add(tok)
		for _, syn := range synonyms[tok] {
			add(strings.ToLower(syn))
		}
	}

	return out
}

// Score computes the lexical similarity of a free-text query against a
// market's question/description text. Deterministic, always in [0,1].
//
// Exact containment in either direction short-circuits to 1.0. Otherwise the
// base score is the fraction of expanded keywords present in the market text,
// plus a partial-word bonus of 0.1 per (keyword, market-word) pair sharing a
// substring relationship, normalized by keyword count.
func Score(query, marketText string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	t := strings.ToLower(strings.TrimSpace(marketText))
	if q == "" || t == "" {
		return 0
	}

	if strings.Contains(t, q) || strings.Contains(q, t) {
		return 1.0
	}

	keywords := ExpandKeywords(q)
	if len(keywords) == 0 {
		return 0
	}

	matched := 0
	for _, kw := range keywords {
		if strings.Contains(t, kw) {
			matched++
		}
	}
	score := float64(matched) / float64(len(keywords))

	words := strings.Fields(t)
	bonus := 0.0
	for _, kw := range keywords {
		if len(kw) <= 3 {
			continue
		}
		for _, w := range words {
			if strings.Contains(w, kw) || strings.Contains(kw, w) {
				bonus += 0.1
			}
		}
	}
	score += bonus / float64(len(keywords))

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// intentFilter pre-classifies a query into a coarse topic so that only
// markets on that topic are scored. The patterns are hand-tuned heuristics.
type intentFilter struct {
	name    string
	pattern *regexp.Regexp
}

var intentFilters = []intentFilter{
	{"crypto", regexp.MustCompile(`(?i)\b(bitcoin|btc|ethereum|eth|solana|crypto|defi|blockchain|coin|token)\b`)},
	{"politics", regexp.MustCompile(`(?i)\b(election|president|presidential|senate|congress|governor|vote|ballot|primary|trump|biden|democrat|republican)\b`)},
	{"war", regexp.MustCompile(`(?i)\b(war|invasion|ceasefire|military|troops|strike|nato|missile)\b`)},
	{"sports", regexp.MustCompile(`(?i)\b(nba|nfl|mlb|nhl|soccer|football|basketball|baseball|championship|super bowl|world cup|playoffs?)\b`)},
	{"tech", regexp.MustCompile(`(?i)\b(ai|openai|chatgpt|apple|google|tesla|spacex|iphone|microsoft|nvidia)\b`)},
	{"economy", regexp.MustCompile(`(?i)\b(fed|rates?|inflation|recession|gdp|unemployment|cpi|fomc|tariffs?)\b`)},
	{"entertainment", regexp.MustCompile(`(?i)\b(movie|film|oscars?|grammys?|album|box office|emmys?)\b`)},
}

// detectIntent returns the first intent filter whose pattern matches the
// query, or nil when the query fits no known topic.
func detectIntent(query string) *intentFilter {
	for i := range intentFilters {
		if intentFilters[i].pattern.MatchString(query) {
			return &intentFilters[i]
		}
	}
	return nil
}

// MarketMatch pairs a market with its similarity score.
type MarketMatch struct {
	Market     domain.MarketRecord
	Similarity float64
}

// MatchOptions bound a FindBestMatchingMarkets pass.
type MatchOptions struct {
	// MinSimilarity discards matches scoring below it; zero means
	// DefaultMinSimilarity.
	MinSimilarity float64
	// MaxResults truncates the result list; zero means 1.
	MaxResults int
}

// FindBestMatchingMarkets scores a free-text query against a market universe
// and returns the best matches in descending score order. When the query
// classifies into a known intent, only markets whose text matches that
// intent's pattern are scored, bounding the candidate set before the O(n)
// scoring pass.
func FindBestMatchingMarkets(markets []domain.MarketRecord, query string, opts MatchOptions) []MarketMatch {
	minSim := opts.MinSimilarity
	if minSim == 0 {
		minSim = DefaultMinSimilarity
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 1
	}

	candidates := markets
	if intent := detectIntent(query); intent != nil {
		candidates = candidates[:0:0]
		for _, m := range markets {
			if intent.pattern.MatchString(m.SearchText()) {
				candidates = append(candidates, m)
			}
		}
	}

	var matches []MarketMatch
	for _, m := range candidates {
		if s := Score(query, m.SearchText()); s >= minSim {
			matches = append(matches, MarketMatch{Market: m, Similarity: s})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}
