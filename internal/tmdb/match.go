package tmdb

import (
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeForMatch lowercases, removes accents and collapses whitespace so
// similarity scoring is not thrown off by localization differences.
func normalizeForMatch(s string) string {
	s = strings.ToLower(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(s), " ")
}

// bestResult picks the search result whose title is most similar to the
// query, by Jaro-Winkler similarity. Ties keep the earlier result, so a
// single-result response behaves exactly like taking the first result.
func bestResult(query string, results []searchResult) searchResult {
	normalized := normalizeForMatch(query)
	best := 0
	bestScore := float32(-1)
	for i, r := range results {
		score := edlib.JaroWinklerSimilarity(normalized, normalizeForMatch(r.title()))
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return results[best]
}
