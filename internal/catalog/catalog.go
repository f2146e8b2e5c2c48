// Package catalog manages the media catalog (media, seasons, episodes,
// playable sources) persisted by playlist imports.
package catalog

import "strings"

// ContentType tags a media record with its content class.
type ContentType string

const (
	TypeFilme    ContentType = "filme"
	TypeSerie    ContentType = "serie"
	TypeNovela   ContentType = "novela"
	TypeAnime    ContentType = "anime"
	TypeDorama   ContentType = "dorama"
	TypeInfantil ContentType = "infantil"
	TypeCanal    ContentType = "canal"
)

// IsSerial reports whether the type carries season/episode substructure.
func (t ContentType) IsSerial() bool {
	switch t {
	case TypeSerie, TypeNovela, TypeAnime, TypeDorama:
		return true
	}
	return false
}

// CoarseType guesses a content type from a playlist group label.
// Substring match, case-insensitive, in priority order; unmatched groups
// default to channel. The metadata resolver may refine the guess later.
func CoarseType(groupTitle string) ContentType {
	g := strings.ToLower(groupTitle)
	switch {
	case strings.Contains(g, "filme"):
		return TypeFilme
	case strings.Contains(g, "serie"), strings.Contains(g, "série"):
		return TypeSerie
	case strings.Contains(g, "infantil"):
		return TypeInfantil
	}
	return TypeCanal
}

// categoryIDs maps a content type to its seeded category row.
var categoryIDs = map[ContentType]int64{
	TypeFilme:    1,
	TypeSerie:    17,
	TypeNovela:   18,
	TypeAnime:    19,
	TypeDorama:   20,
	TypeInfantil: 21,
	TypeCanal:    38,
}

// fallbackCategoryID is the channel category.
const fallbackCategoryID = int64(38)

// CategoryID returns the persisted category id for a content type.
// Unknown types map to the channel category.
func CategoryID(t ContentType) int64 {
	if id, ok := categoryIDs[t]; ok {
		return id
	}
	return fallbackCategoryID
}

// Category is one row of the static reference set seeded at initialization.
type Category struct {
	ID          int64
	Title       string
	Description string
	Directory   string
	Image       string
	Kind        string
}

// Media is a top-level title record (film, show, channel).
type Media struct {
	ID         int64
	Title      string
	Image      string
	Background string
	Synopsis   string
	CategoryID int64
	Type       ContentType
	Directory  string
	Views      int64
}

// Season is serial-content substructure under a Media.
type Season struct {
	ID        int64
	MediaID   int64
	Title     string
	Directory string
}

// Episode belongs to a Media and a Season.
type Episode struct {
	ID        int64
	MediaID   int64
	SeasonID  int64
	Title     string
	Directory string
	Number    int
}

// Player is a playable source URL attached to a Media, optionally scoped to
// a season and episode. The URL is the natural dedup key across the store.
type Player struct {
	ID        int64
	MediaID   int64
	SeasonID  *int64 // nil for non-serial content
	EpisodeID *int64 // nil for non-serial content
	Title     string
	URL       string
	Kind      string
	Audio     string
	Access    string
}
