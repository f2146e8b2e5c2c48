package tmdb

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL      = "https://api.themoviedb.org"
	defaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	defaultLanguage     = "pt-BR"
)

// Client resolves titles against the TMDB search API.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	httpClient   *http.Client
	cache        Cache
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithImageBaseURL sets the poster image base URL.
func WithImageBaseURL(url string) Option {
	return func(c *Client) {
		c.imageBaseURL = url
	}
}

// WithLanguage sets the localization for search results.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.language = lang
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger for degraded lookups.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new TMDB client over the given cache.
func NewClient(apiKey string, cache Cache, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		imageBaseURL: defaultImageBaseURL,
		language:     defaultLanguage,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:  cache,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve looks up enrichment data for a raw title and coarse content type.
// It never returns an error: transport and parse failures degrade to
// {no poster, coarse type unchanged}. Every outcome, including the negative
// ones, is written to the cache.
func (c *Client) Resolve(ctx context.Context, title, contentType string) Result {
	key := CacheKey(title, contentType)
	if v, ok := c.cache.Get(key); ok {
		return v
	}

	res := c.search(ctx, title, contentType)
	if err := c.cache.Set(key, res); err != nil {
		c.logger.Warn("metadata cache write failed", "key", key, "error", err)
	}
	return res
}

func (c *Client) search(ctx context.Context, title, contentType string) Result {
	fallback := Result{Category: contentType}

	clean, year := cleanTitle(title)

	endpoint := "tv"
	if contentType == "filme" {
		endpoint = "movie"
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", clean)
	params.Set("language", c.language)
	if year != "" {
		params.Set("year", year)
	}
	searchURL := c.baseURL + "/3/search/" + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return fallback
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("tmdb lookup failed", "title", clean, "error", err)
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("tmdb lookup failed", "title", clean, "status", resp.Status)
		return fallback
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn("tmdb decode failed", "title", clean, "error", err)
		return fallback
	}
	if len(body.Results) == 0 {
		return fallback
	}

	match := bestResult(clean, body.Results)

	res := Result{Category: refineCategory(contentType, match)}
	if match.PosterPath != "" {
		poster := c.imageBaseURL + match.PosterPath
		res.Poster = &poster
	}
	return res
}

// refineCategory reclassifies a coarse "serie" using external signals:
// animation becomes anime, soap genres become novela, and Korean or
// Japanese origin becomes dorama. Other coarse types pass through.
func refineCategory(contentType string, r searchResult) string {
	if contentType != "serie" {
		return contentType
	}
	for _, g := range r.GenreIDs {
		if g == genreAnimation {
			return "anime"
		}
	}
	for _, g := range r.GenreIDs {
		if g == genreSoap {
			return "novela"
		}
	}
	for _, country := range r.OriginCountry {
		if country == "KR" || country == "JP" {
			return "dorama"
		}
	}
	return "serie"
}
