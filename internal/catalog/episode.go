package catalog

import (
	"database/sql"
	"errors"
	"fmt"
)

func addEpisode(q querier, e *Episode) error {
	result, err := q.Exec(`
		INSERT INTO episodes (media_id, season_id, title, directory, number)
		VALUES (?, ?, ?, ?, ?)`,
		e.MediaID, e.SeasonID, e.Title, e.Directory, e.Number,
	)
	if err != nil {
		return fmt.Errorf("insert episode: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	e.ID = id
	return nil
}

// AddEpisode inserts a new episode. Sets ID on the struct.
func (s *Store) AddEpisode(e *Episode) error { return addEpisode(s.db, e) }

// AddEpisode inserts a new episode within a transaction.
func (t *Tx) AddEpisode(e *Episode) error { return addEpisode(t.tx, e) }

func findEpisode(q querier, mediaID, seasonID int64, number int) (*Episode, error) {
	e := &Episode{}
	err := q.QueryRow(`
		SELECT id, media_id, season_id, title, directory, number
		FROM episodes WHERE media_id = ? AND season_id = ? AND number = ?`,
		mediaID, seasonID, number,
	).Scan(&e.ID, &e.MediaID, &e.SeasonID, &e.Title, &e.Directory, &e.Number)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find episode %d: %w", number, mapSQLiteError(err))
	}
	return e, nil
}

// FindEpisode finds an episode by (media, season, episode number).
// Returns nil, nil if not found.
func (s *Store) FindEpisode(mediaID, seasonID int64, number int) (*Episode, error) {
	return findEpisode(s.db, mediaID, seasonID, number)
}

// FindEpisode finds an episode within a transaction.
func (t *Tx) FindEpisode(mediaID, seasonID int64, number int) (*Episode, error) {
	return findEpisode(t.tx, mediaID, seasonID, number)
}

// FindOrCreateEpisode finds an existing episode or creates a new one.
// Returns (episode, created, error).
func (t *Tx) FindOrCreateEpisode(mediaID, seasonID int64, number int, title, directory string) (*Episode, bool, error) {
	ep, err := findEpisode(t.tx, mediaID, seasonID, number)
	if err != nil {
		return nil, false, err
	}
	if ep != nil {
		return ep, false, nil
	}
	ep = &Episode{MediaID: mediaID, SeasonID: seasonID, Title: title, Directory: directory, Number: number}
	if err := addEpisode(t.tx, ep); err != nil {
		return nil, false, err
	}
	return ep, true, nil
}
