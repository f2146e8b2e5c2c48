package catalog

import (
	"database/sql"
	"errors"
	"fmt"
)

func addMedia(q querier, m *Media) error {
	result, err := q.Exec(`
		INSERT INTO media (title, image, background, synopsis, category_id, type, directory, views)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		m.Title, m.Image, m.Background, m.Synopsis, m.CategoryID, m.Type, m.Directory,
	)
	if err != nil {
		return fmt.Errorf("insert media: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	m.ID = id
	return nil
}

// AddMedia inserts a new media record. Sets ID on the struct.
func (s *Store) AddMedia(m *Media) error { return addMedia(s.db, m) }

// AddMedia inserts a new media record within a transaction.
func (t *Tx) AddMedia(m *Media) error { return addMedia(t.tx, m) }

func getMedia(q querier, id int64) (*Media, error) {
	m := &Media{}
	err := q.QueryRow(`
		SELECT id, title, image, background, synopsis, category_id, type, directory, views
		FROM media WHERE id = ?`, id,
	).Scan(&m.ID, &m.Title, &m.Image, &m.Background, &m.Synopsis, &m.CategoryID, &m.Type, &m.Directory, &m.Views)
	if err != nil {
		return nil, fmt.Errorf("get media %d: %w", id, mapSQLiteError(err))
	}
	return m, nil
}

// GetMedia retrieves a media record by ID.
// Returns ErrNotFound if the media does not exist.
func (s *Store) GetMedia(id int64) (*Media, error) { return getMedia(s.db, id) }

// GetMedia retrieves a media record by ID within a transaction.
func (t *Tx) GetMedia(id int64) (*Media, error) { return getMedia(t.tx, id) }

func findMediaByTitleType(q querier, title string, typ ContentType) (*Media, error) {
	m := &Media{}
	err := q.QueryRow(`
		SELECT id, title, image, background, synopsis, category_id, type, directory, views
		FROM media WHERE title = ? AND type = ? ORDER BY id LIMIT 1`, title, typ,
	).Scan(&m.ID, &m.Title, &m.Image, &m.Background, &m.Synopsis, &m.CategoryID, &m.Type, &m.Directory, &m.Views)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find media %q/%s: %w", title, typ, mapSQLiteError(err))
	}
	return m, nil
}

// FindMediaByTitleType finds the media record identified by a (title, type)
// pair. Returns nil, nil if not found.
func (s *Store) FindMediaByTitleType(title string, typ ContentType) (*Media, error) {
	return findMediaByTitleType(s.db, title, typ)
}

// FindMediaByTitleType finds a media record by (title, type) within a transaction.
func (t *Tx) FindMediaByTitleType(title string, typ ContentType) (*Media, error) {
	return findMediaByTitleType(t.tx, title, typ)
}

// MediaTitle is the (id, title) projection of a media row. Title matching
// happens in Go because SQLite's LOWER folds only ASCII.
type MediaTitle struct {
	ID    int64
	Title string
}

func listMediaTitles(q querier) ([]MediaTitle, error) {
	rows, err := q.Query("SELECT id, title FROM media ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list media titles: %w", mapSQLiteError(err))
	}
	defer func() { _ = rows.Close() }()

	var titles []MediaTitle
	for rows.Next() {
		var mt MediaTitle
		if err := rows.Scan(&mt.ID, &mt.Title); err != nil {
			return nil, fmt.Errorf("scan media title: %w", err)
		}
		titles = append(titles, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media titles: %w", err)
	}
	return titles, nil
}

// ListMediaTitles returns the id and title of every media row, ordered by id.
func (s *Store) ListMediaTitles() ([]MediaTitle, error) {
	return listMediaTitles(s.db)
}

// ListMediaTitles lists media ids and titles within a transaction.
func (t *Tx) ListMediaTitles() ([]MediaTitle, error) {
	return listMediaTitles(t.tx)
}

func countMedia(q querier) (int, error) {
	var n int
	if err := q.QueryRow("SELECT COUNT(*) FROM media").Scan(&n); err != nil {
		return 0, fmt.Errorf("count media: %w", err)
	}
	return n, nil
}

// CountMedia returns the total number of media rows.
func (s *Store) CountMedia() (int, error) { return countMedia(s.db) }

// CountMedia returns the total number of media rows within a transaction.
func (t *Tx) CountMedia() (int, error) { return countMedia(t.tx) }

func deleteMediaCascade(q querier, id int64) error {
	// Dependency order: players, episodes, seasons, then the media row.
	for _, stmt := range []string{
		"DELETE FROM players WHERE media_id = ?",
		"DELETE FROM episodes WHERE media_id = ?",
		"DELETE FROM seasons WHERE media_id = ?",
		"DELETE FROM media WHERE id = ?",
	} {
		if _, err := q.Exec(stmt, id); err != nil {
			return fmt.Errorf("cascade delete media %d: %w", id, mapSQLiteError(err))
		}
	}
	return nil
}

// DeleteMediaCascade removes a media row together with its seasons,
// episodes and players, in dependency order.
func (s *Store) DeleteMediaCascade(id int64) error { return deleteMediaCascade(s.db, id) }

// DeleteMediaCascade removes a media row and its sub-records within a transaction.
func (t *Tx) DeleteMediaCascade(id int64) error { return deleteMediaCascade(t.tx, id) }
