// Package dedupe finds and reconciles duplicate player rows so each stream
// URL maps to exactly one player.
package dedupe

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vodarr/vodarr/internal/catalog"
)

// Group is one (media title, media type, stream URL) triple referenced by
// more than one player row.
type Group struct {
	Title   string  `json:"title"`
	Type    string  `json:"type"`
	URL     string  `json:"url"`
	Count   int     `json:"count"`
	Players []int64 `json:"players"`
}

// RemovalReport summarizes a reconciliation pass.
type RemovalReport struct {
	PlayersRemoved int `json:"players_removed"`
	MediaRemoved   int `json:"media_removed"`
}

// Reconciler detects and removes duplicate players.
type Reconciler struct {
	store  *catalog.Store
	logger *slog.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(store *catalog.Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, logger: logger.With("component", "dedupe")}
}

// Find returns every duplicate group, with the player ids in ascending
// order. The first id of each group is the one a removal pass keeps.
func (r *Reconciler) Find(ctx context.Context) ([]Group, error) {
	tx, err := r.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	groups, _, err := findDuplicates(tx)
	return groups, err
}

// Remove deletes all but the lowest-id player of each duplicate group,
// sweeps the touched media left without any player (cascading their seasons
// and episodes), and finally removes players whose media row no longer
// exists. Media untouched by the duplicate groups is never deleted.
func (r *Reconciler) Remove(ctx context.Context) (*RemovalReport, error) {
	tx, err := r.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	groups, playerMedia, err := findDuplicates(tx)
	if err != nil {
		return nil, err
	}

	report := &RemovalReport{}
	var touched []int64
	seen := map[int64]struct{}{}
	for _, g := range groups {
		for _, id := range g.Players[1:] {
			if err := tx.DeletePlayer(id); err != nil {
				return nil, fmt.Errorf("delete player %d: %w", id, err)
			}
			report.PlayersRemoved++
			if mid := playerMedia[id]; mid != 0 {
				if _, ok := seen[mid]; !ok {
					seen[mid] = struct{}{}
					touched = append(touched, mid)
				}
			}
		}
	}

	for _, id := range touched {
		n, err := tx.CountPlayers(id)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			continue
		}
		if err := tx.DeleteMediaCascade(id); err != nil {
			return nil, fmt.Errorf("delete media %d: %w", id, err)
		}
		report.MediaRemoved++
	}

	swept, err := tx.DeleteOrphanPlayers()
	if err != nil {
		return nil, err
	}
	report.PlayersRemoved += swept

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit dedupe: %w", err)
	}
	r.logger.Info("duplicates reconciled",
		"groups", len(groups),
		"players_removed", report.PlayersRemoved,
		"media_removed", report.MediaRemoved)
	return report, nil
}

func findDuplicates(tx *catalog.Tx) ([]Group, map[int64]int64, error) {
	rows, err := tx.FindDuplicatePlayers()
	if err != nil {
		return nil, nil, err
	}
	groups := []Group{}
	playerMedia := map[int64]int64{}
	var cur *Group
	for _, row := range rows {
		typ := string(row.Type)
		if cur == nil || cur.Title != row.Title || cur.Type != typ || cur.URL != row.URL {
			groups = append(groups, Group{Title: row.Title, Type: typ, URL: row.URL})
			cur = &groups[len(groups)-1]
		}
		cur.Players = append(cur.Players, row.ID)
		cur.Count++
		playerMedia[row.ID] = row.MediaID
	}
	return groups, playerMedia, nil
}
