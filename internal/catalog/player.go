package catalog

import (
	"database/sql"
	"errors"
	"fmt"
)

func addPlayer(q querier, p *Player) error {
	result, err := q.Exec(`
		INSERT INTO players (media_id, season_id, episode_id, title, url, kind, audio, access)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.MediaID, p.SeasonID, p.EpisodeID, p.Title, p.URL, p.Kind, p.Audio, p.Access,
	)
	if err != nil {
		return fmt.Errorf("insert player: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	p.ID = id
	return nil
}

// AddPlayer inserts a new playable source. Sets ID on the struct.
func (s *Store) AddPlayer(p *Player) error { return addPlayer(s.db, p) }

// AddPlayer inserts a new playable source within a transaction.
func (t *Tx) AddPlayer(p *Player) error { return addPlayer(t.tx, p) }

func findPlayerByURL(q querier, url string) (*Player, error) {
	p := &Player{}
	err := q.QueryRow(`
		SELECT id, media_id, season_id, episode_id, title, url, kind, audio, access
		FROM players WHERE url = ? ORDER BY id LIMIT 1`, url,
	).Scan(&p.ID, &p.MediaID, &p.SeasonID, &p.EpisodeID, &p.Title, &p.URL, &p.Kind, &p.Audio, &p.Access)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find player by url: %w", mapSQLiteError(err))
	}
	return p, nil
}

// FindPlayerByURL finds a playable source by its URL, the natural dedup key.
// Returns nil, nil if not found.
func (s *Store) FindPlayerByURL(url string) (*Player, error) { return findPlayerByURL(s.db, url) }

// FindPlayerByURL finds a playable source by URL within a transaction.
func (t *Tx) FindPlayerByURL(url string) (*Player, error) { return findPlayerByURL(t.tx, url) }

func playerExists(q querier, mediaID int64, url string) (bool, error) {
	var id int64
	err := q.QueryRow("SELECT id FROM players WHERE media_id = ? AND url = ?", mediaID, url).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check player: %w", mapSQLiteError(err))
	}
	return true, nil
}

// PlayerExists reports whether a player with this URL is already attached to
// the given media.
func (s *Store) PlayerExists(mediaID int64, url string) (bool, error) {
	return playerExists(s.db, mediaID, url)
}

// PlayerExists checks for an attached player within a transaction.
func (t *Tx) PlayerExists(mediaID int64, url string) (bool, error) {
	return playerExists(t.tx, mediaID, url)
}

func countPlayers(q querier, mediaID int64) (int, error) {
	var n int
	if err := q.QueryRow("SELECT COUNT(*) FROM players WHERE media_id = ?", mediaID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return n, nil
}

// CountPlayers returns the number of players attached to a media.
func (s *Store) CountPlayers(mediaID int64) (int, error) { return countPlayers(s.db, mediaID) }

// CountPlayers returns the number of attached players within a transaction.
func (t *Tx) CountPlayers(mediaID int64) (int, error) { return countPlayers(t.tx, mediaID) }

// DuplicatePlayer is one row of a duplicate scan: a player together with its
// parent media's identity pair.
type DuplicatePlayer struct {
	ID      int64
	MediaID int64
	URL     string
	Title   string
	Type    ContentType
}

func findDuplicatePlayers(q querier) ([]DuplicatePlayer, error) {
	rows, err := q.Query(`
		SELECT p.id, p.media_id, p.url, m.title, m.type
		FROM players p JOIN media m ON m.id = p.media_id
		WHERE (m.title, m.type, p.url) IN (
			SELECT m2.title, m2.type, p2.url
			FROM players p2 JOIN media m2 ON m2.id = p2.media_id
			GROUP BY m2.title, m2.type, p2.url
			HAVING COUNT(*) > 1)
		ORDER BY m.title, m.type, p.url, p.id`)
	if err != nil {
		return nil, fmt.Errorf("find duplicate players: %w", mapSQLiteError(err))
	}
	defer rows.Close()

	var dups []DuplicatePlayer
	for rows.Next() {
		var d DuplicatePlayer
		if err := rows.Scan(&d.ID, &d.MediaID, &d.URL, &d.Title, &d.Type); err != nil {
			return nil, fmt.Errorf("scan duplicate player: %w", err)
		}
		dups = append(dups, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate duplicate players: %w", err)
	}
	return dups, nil
}

// FindDuplicatePlayers returns every player whose (media title, media type,
// url) triple appears more than once, ordered by triple then player id.
func (s *Store) FindDuplicatePlayers() ([]DuplicatePlayer, error) {
	return findDuplicatePlayers(s.db)
}

// FindDuplicatePlayers scans for duplicate players within a transaction.
func (t *Tx) FindDuplicatePlayers() ([]DuplicatePlayer, error) {
	return findDuplicatePlayers(t.tx)
}

func deleteOrphanPlayers(q querier) (int, error) {
	res, err := q.Exec("DELETE FROM players WHERE media_id NOT IN (SELECT id FROM media)")
	if err != nil {
		return 0, fmt.Errorf("delete orphan players: %w", mapSQLiteError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete orphan players: %w", err)
	}
	return int(n), nil
}

// DeleteOrphanPlayers removes players whose media row no longer exists.
// Returns the number of rows removed.
func (s *Store) DeleteOrphanPlayers() (int, error) { return deleteOrphanPlayers(s.db) }

// DeleteOrphanPlayers sweeps media-less players within a transaction.
func (t *Tx) DeleteOrphanPlayers() (int, error) { return deleteOrphanPlayers(t.tx) }

func deletePlayer(q querier, id int64) error {
	if _, err := q.Exec("DELETE FROM players WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete player: %w", mapSQLiteError(err))
	}
	return nil
}

// DeletePlayer removes a player row by id.
func (s *Store) DeletePlayer(id int64) error { return deletePlayer(s.db, id) }

// DeletePlayer removes a player row within a transaction.
func (t *Tx) DeletePlayer(id int64) error { return deletePlayer(t.tx, id) }
