// Package ingest drives playlist imports: entry upserts against the catalog
// and resumable chunked processing of playlist files.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/vodarr/vodarr/internal/catalog"
	"github.com/vodarr/vodarr/internal/tmdb"
	"github.com/vodarr/vodarr/pkg/playlist"
)

//go:generate mockgen -source=ingest.go -destination=mocks/mock_resolver.go -package=mocks

// Resolver enriches a (title, coarse type) pair with external metadata.
// Implementations must degrade gracefully: a lookup failure returns the
// coarse type unchanged, never an error.
type Resolver interface {
	Resolve(ctx context.Context, title, contentType string) tmdb.Result
}

const (
	playerKind   = "iframe"
	playerAudio  = "dublado"
	playerAccess = "gratis"

	defaultImage = "default_image.png"

	synopsis = "Conteúdo importado de uma lista M3U Nenhum Conteudo é Hospedado em Nossos Servidores."

	maxTitleLen = 255
)

// Ingestor performs idempotent creation of catalog records for resolved
// playlist entries.
type Ingestor struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewIngestor creates an Ingestor.
func NewIngestor(resolver Resolver, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{resolver: resolver, logger: logger}
}

// Add upserts one playlist entry inside the caller's transaction. The
// returned bool reports whether the entry already existed (by player URL).
// A database failure aborts and is returned to the caller, which must roll
// back the enclosing transaction.
func (ing *Ingestor) Add(ctx context.Context, tx *catalog.Tx, e *playlist.Entry) (Outcome, bool, error) {
	// URL is the natural dedup key across the whole store.
	if p, err := tx.FindPlayerByURL(e.URL); err != nil {
		return Outcome{}, false, err
	} else if p != nil {
		title := ""
		m, err := tx.GetMedia(p.MediaID)
		if err != nil && !errors.Is(err, catalog.ErrNotFound) {
			return Outcome{}, false, err
		}
		if m != nil {
			title = m.Title
		}
		return Outcome{Type: "unknown", Title: title, GroupTitle: e.GroupTitle, URL: e.URL}, true, nil
	}

	coarse := catalog.CoarseType(e.GroupTitle)
	rawTitle := e.Title()
	parts := playlist.SplitSeasonEpisode(rawTitle)
	title := truncate(parts.BaseTitle, maxTitleLen)
	directory := playlist.Slugify(title)

	res := ing.resolver.Resolve(ctx, title, string(coarse))
	contentType := catalog.ContentType(res.Category)
	image := defaultImage
	switch {
	case res.Poster != nil:
		image = *res.Poster
	case e.TvgLogo != "":
		image = e.TvgLogo
	}

	var mediaID int64
	m, err := tx.FindMediaByTitleType(title, contentType)
	if err != nil {
		return Outcome{}, false, err
	}
	if m != nil {
		// Defensive re-check: the URL may already be attached to this
		// media under a different historical lookup path.
		attached, err := tx.PlayerExists(m.ID, e.URL)
		if err != nil {
			return Outcome{}, false, err
		}
		if attached {
			return Outcome{Type: string(contentType), Title: rawTitle, GroupTitle: e.GroupTitle, URL: e.URL}, true, nil
		}
		mediaID = m.ID
	} else {
		media := &catalog.Media{
			Title:      title,
			Image:      image,
			Background: image,
			Synopsis:   synopsis,
			CategoryID: catalog.CategoryID(contentType),
			Type:       contentType,
			Directory:  directory,
		}
		if err := tx.AddMedia(media); err != nil {
			return Outcome{}, false, err
		}
		mediaID = media.ID
	}

	if contentType.IsSerial() && parts.Season != "" && parts.Episode != "" {
		if err := ing.addSerialPlayer(tx, mediaID, title, parts, e.URL); err != nil {
			return Outcome{}, false, err
		}
	} else {
		player := &catalog.Player{
			MediaID: mediaID,
			Title:   title,
			URL:     e.URL,
			Kind:    playerKind,
			Audio:   playerAudio,
			Access:  playerAccess,
		}
		if err := tx.AddPlayer(player); err != nil {
			return Outcome{}, false, err
		}
	}

	return Outcome{Type: string(contentType), Title: rawTitle, GroupTitle: e.GroupTitle, URL: e.URL}, false, nil
}

// addSerialPlayer creates the season/episode substructure on first
// encounter and attaches the player to it.
func (ing *Ingestor) addSerialPlayer(tx *catalog.Tx, mediaID int64, title string, parts playlist.TitleParts, url string) error {
	seasonNum, err := strconv.Atoi(parts.Season)
	if err != nil {
		return fmt.Errorf("season number %q: %w", parts.Season, err)
	}
	episodeNum, err := strconv.Atoi(parts.Episode)
	if err != nil {
		return fmt.Errorf("episode number %q: %w", parts.Episode, err)
	}

	seasonTitle := fmt.Sprintf("%dª Temporada", seasonNum)
	season, _, err := tx.FindOrCreateSeason(mediaID, seasonTitle, playlist.Slugify("temporada-"+parts.Season))
	if err != nil {
		return err
	}

	episodeTitle := "Episódio " + parts.Episode
	episode, _, err := tx.FindOrCreateEpisode(mediaID, season.ID, episodeNum, episodeTitle, playlist.Slugify("episodio-"+parts.Episode))
	if err != nil {
		return err
	}

	player := &catalog.Player{
		MediaID:   mediaID,
		SeasonID:  &season.ID,
		EpisodeID: &episode.ID,
		Title:     fmt.Sprintf("%s - S%sE%s", title, parts.Season, parts.Episode),
		URL:       url,
		Kind:      playerKind,
		Audio:     playerAudio,
		Access:    playerAccess,
	}
	return tx.AddPlayer(player)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
