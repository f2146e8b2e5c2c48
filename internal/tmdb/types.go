// Package tmdb resolves playlist titles against The Movie Database search
// API, caching every outcome so no key is ever queried twice.
package tmdb

import "context"

// Result is the enrichment for one (title, type) pair. The JSON tags match
// the persisted cache value format.
type Result struct {
	Poster   *string `json:"capa"`      // full image URL; nil when unknown
	Category string  `json:"categoria"` // refined content type
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title         string   `json:"title"` // movie endpoint
	Name          string   `json:"name"`  // tv endpoint
	PosterPath    string   `json:"poster_path"`
	GenreIDs      []int    `json:"genre_ids"`
	OriginCountry []string `json:"origin_country"`
}

// title returns the candidate's display title for either endpoint.
func (r searchResult) title() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// TMDB genre ids used for series refinement.
const (
	genreAnimation = 16
	genreSoap      = 10766
)

// Passthrough is a Resolver stand-in for deployments without an API key.
// Every lookup keeps its coarse type and has no poster.
type Passthrough struct{}

func (Passthrough) Resolve(_ context.Context, _, contentType string) Result {
	return Result{Category: contentType}
}
