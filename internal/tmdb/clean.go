package tmdb

import (
	"regexp"
	"strings"
)

var (
	trailingMarkerRE = regexp.MustCompile(`(?i)\s*S\d+E\d+$`)
	parenYearRE      = regexp.MustCompile(`\s*\(\d{4}\)`)
	noiseRE          = regexp.MustCompile(`(?i)(dublado|legendado|hd|4k|1080p|720p|\[[^\]]*\])`)
	bareYearRE       = regexp.MustCompile(`\b(\d{4})\b`)
)

// cleanTitle prepares a raw playlist title for a search query. It strips a
// trailing season/episode marker, a parenthesized year and quality/language
// noise tokens, then collapses whitespace. The bare year is extracted from
// the original title to use as a search filter and removed from the cleaned
// query as well.
func cleanTitle(title string) (clean, year string) {
	clean = trailingMarkerRE.ReplaceAllString(title, "")
	clean = parenYearRE.ReplaceAllString(clean, "")
	clean = noiseRE.ReplaceAllString(clean, "")
	clean = strings.Join(strings.Fields(clean), " ")

	if m := bareYearRE.FindStringSubmatch(title); m != nil {
		year = m[1]
		clean = strings.TrimSpace(strings.ReplaceAll(clean, year, ""))
		clean = strings.Join(strings.Fields(clean), " ")
	}
	return clean, year
}
