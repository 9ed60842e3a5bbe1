package resolver

import "strings"

// SlugCandidates expands a slug into an ordered list of progressively shorter
// probe candidates, longest first. Polymarket slugs are often suffixed with a
// short disambiguating hash ("will-btc-hit-100k-xk2p"); stripping those
// suffixes recovers the slug a human would have typed. The trailing part is
// dropped only while it looks like such a suffix: at most 4 characters with
// at least one lowercase letter. The result is deduplicated and always
// contains the input itself as its first element.
func SlugCandidates(slug string) []string {
	parts := strings.Split(slug, "-")

	var out []string
	seen := make(map[string]bool, len(parts))
	for len(parts) > 0 {
		cand := strings.Join(parts, "-")
		if !seen[cand] {
			seen[cand] = true
			out = append(out, cand)
		}
		if !looksHashSuffix(parts[len(parts)-1]) {
			break
		}
		parts = parts[:len(parts)-1]
	}

	return out
}

func looksHashSuffix(part string) bool {
	if part == "" || len(part) > 4 {
		return false
	}
	for _, r := range part {
		if r >= 'a' && r <= 'z' {
			return true
		}
	}
	return false
}
