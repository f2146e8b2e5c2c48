package catalog

import (
	"database/sql"
	"errors"
	"fmt"
)

func addSeason(q querier, s *Season) error {
	result, err := q.Exec(`
		INSERT INTO seasons (media_id, title, directory)
		VALUES (?, ?, ?)`,
		s.MediaID, s.Title, s.Directory,
	)
	if err != nil {
		return fmt.Errorf("insert season: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	s.ID = id
	return nil
}

// AddSeason inserts a new season. Sets ID on the struct.
func (s *Store) AddSeason(se *Season) error { return addSeason(s.db, se) }

// AddSeason inserts a new season within a transaction.
func (t *Tx) AddSeason(se *Season) error { return addSeason(t.tx, se) }

func findSeason(q querier, mediaID int64, title string) (*Season, error) {
	s := &Season{}
	err := q.QueryRow(`
		SELECT id, media_id, title, directory
		FROM seasons WHERE media_id = ? AND title = ?`, mediaID, title,
	).Scan(&s.ID, &s.MediaID, &s.Title, &s.Directory)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find season %q: %w", title, mapSQLiteError(err))
	}
	return s, nil
}

// FindSeason finds a season by parent media and title.
// Returns nil, nil if not found.
func (s *Store) FindSeason(mediaID int64, title string) (*Season, error) {
	return findSeason(s.db, mediaID, title)
}

// FindSeason finds a season by parent media and title within a transaction.
func (t *Tx) FindSeason(mediaID int64, title string) (*Season, error) {
	return findSeason(t.tx, mediaID, title)
}

// FindOrCreateSeason finds an existing season or creates a new one.
// Returns (season, created, error).
func (t *Tx) FindOrCreateSeason(mediaID int64, title, directory string) (*Season, bool, error) {
	se, err := findSeason(t.tx, mediaID, title)
	if err != nil {
		return nil, false, err
	}
	if se != nil {
		return se, false, nil
	}
	se = &Season{MediaID: mediaID, Title: title, Directory: directory}
	if err := addSeason(t.tx, se); err != nil {
		return nil, false, err
	}
	return se, true, nil
}
