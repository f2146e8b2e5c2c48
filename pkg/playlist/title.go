package playlist

import (
	"regexp"
	"strings"
)

// seasonEpisodeRE matches the serial marker anywhere in a title.
var seasonEpisodeRE = regexp.MustCompile(`(?i)S(\d+)E(\d+)`)

// TitleParts is a decomposed display title.
type TitleParts struct {
	BaseTitle string
	Season    string // raw digits, e.g. "01"; empty when absent
	Episode   string // raw digits, e.g. "02"; empty when absent
}

// SplitSeasonEpisode extracts a S<digits>E<digits> marker from a raw title.
// The base title is the input with the marker removed and whitespace
// collapsed. Without a marker the base title is the input unchanged.
func SplitSeasonEpisode(title string) TitleParts {
	m := seasonEpisodeRE.FindStringSubmatch(title)
	if m == nil {
		return TitleParts{BaseTitle: strings.TrimSpace(title)}
	}
	base := seasonEpisodeRE.ReplaceAllString(title, "")
	base = strings.Join(strings.Fields(base), " ")
	return TitleParts{BaseTitle: base, Season: m[1], Episode: m[2]}
}

// Slugify derives a directory slug from a title: lowercase, every character
// outside [a-z0-9] becomes a hyphen. Deterministic; used for media, season
// and episode directory fields.
func Slugify(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// NormalizeTitle lowercases a title and collapses runs of whitespace.
// Playlist deletion matches stored media against titles normalized this way.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
