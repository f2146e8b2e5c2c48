package tmdb

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// Cache stores resolved results keyed by a hash of (title, type). Entries
// never expire; negative results are cached too, so a key is resolved
// against the external service at most once.
type Cache interface {
	Get(key string) (Result, bool)
	Set(key string, v Result) error
}

// CacheKey derives the cache key for a (title, coarse type) pair.
func CacheKey(title, contentType string) string {
	sum := md5.Sum([]byte(title + "-" + contentType))
	return hex.EncodeToString(sum[:])
}

// SQLCache is a SQLite-backed Cache. Writes use an atomic upsert, so
// concurrent resolver calls cannot corrupt or lose entries.
type SQLCache struct {
	db *sql.DB
}

// NewSQLCache creates a cache over the metadata_cache table.
func NewSQLCache(db *sql.DB) *SQLCache {
	return &SQLCache{db: db}
}

// Get retrieves a cached result by key.
func (c *SQLCache) Get(key string) (Result, bool) {
	var poster sql.NullString
	var category string
	err := c.db.QueryRow(
		"SELECT poster, category FROM metadata_cache WHERE key = ?", key,
	).Scan(&poster, &category)
	if err != nil {
		return Result{}, false
	}
	r := Result{Category: category}
	if poster.Valid {
		r.Poster = &poster.String
	}
	return r, true
}

// Set stores a result, replacing any previous value for the key.
func (c *SQLCache) Set(key string, v Result) error {
	var poster sql.NullString
	if v.Poster != nil {
		poster = sql.NullString{String: *v.Poster, Valid: true}
	}
	_, err := c.db.Exec(
		`INSERT INTO metadata_cache (key, poster, category)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET poster = excluded.poster, category = excluded.category`,
		key, poster, v.Category,
	)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
