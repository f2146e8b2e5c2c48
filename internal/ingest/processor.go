package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/vodarr/vodarr/internal/catalog"
	"github.com/vodarr/vodarr/pkg/playlist"
)

// DefaultChunkSize bounds how many entries a single ProcessChunk call
// handles.
const DefaultChunkSize = 100

// ChunkReport describes the state of an import after one chunk.
type ChunkReport struct {
	Result    Result  `json:"results"`
	Processed int     `json:"processed"`
	Total     int     `json:"total"`
	Progress  float64 `json:"progress"`
}

// Complete reports whether the import has consumed the whole playlist.
func (r *ChunkReport) Complete() bool {
	return r.Processed >= r.Total
}

// FileStatus summarizes one stored playlist and its import progress.
type FileStatus struct {
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Processed int    `json:"processed"`
	Status    string `json:"status"`
}

// Processor runs resumable chunked imports over playlist files stored in a
// directory, one transaction per chunk.
type Processor struct {
	store     *catalog.Store
	ingestor  *Ingestor
	dir       string
	chunkSize int
	logger    *slog.Logger
}

// NewProcessor creates a Processor over the given playlist directory.
func NewProcessor(store *catalog.Store, ingestor *Ingestor, dir string, chunkSize int, logger *slog.Logger) *Processor {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		store:     store,
		ingestor:  ingestor,
		dir:       dir,
		chunkSize: chunkSize,
		logger:    logger.With("component", "processor"),
	}
}

// Dir returns the playlist storage directory.
func (p *Processor) Dir() string {
	return p.dir
}

// ProcessChunk advances the import of a stored playlist by one chunk. Each
// call opens a checkpoint, processes up to chunkSize entries in a single
// transaction, and persists the new checkpoint only after commit. A
// concurrent call for the same file fails fast with ErrImportBusy.
func (p *Processor) ProcessChunk(ctx context.Context, filename string) (*ChunkReport, error) {
	path, err := p.resolve(filename)
	if err != nil {
		return nil, err
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock playlist: %w", err)
	}
	if !locked {
		return nil, ErrImportBusy
	}
	defer lock.Unlock()

	cp, err := p.openCheckpoint(path)
	if err != nil {
		return nil, err
	}
	if cp.Processed >= cp.Total {
		if err := RemoveCheckpoint(CheckpointPath(path)); err != nil {
			return nil, err
		}
		return &ChunkReport{Result: NewResult(), Processed: cp.Processed, Total: cp.Total, Progress: 100}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open playlist: %w", err)
	}
	defer f.Close()

	res, n, err := p.processRange(ctx, f, cp.Processed, p.chunkSize)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// The file shrank underneath the checkpoint. Nothing left to do.
		p.logger.Warn("playlist shorter than checkpoint, finishing import",
			"file", filename, "processed", cp.Processed, "total", cp.Total)
		if err := RemoveCheckpoint(CheckpointPath(path)); err != nil {
			return nil, err
		}
		return &ChunkReport{Result: NewResult(), Processed: cp.Total, Total: cp.Total, Progress: 100}, nil
	}

	cp.Processed += n
	cp.Results.Merge(res)

	if cp.Processed >= cp.Total {
		if err := RemoveCheckpoint(CheckpointPath(path)); err != nil {
			return nil, err
		}
	} else if err := cp.Save(CheckpointPath(path)); err != nil {
		return nil, err
	}

	report := &ChunkReport{Result: res, Processed: cp.Processed, Total: cp.Total, Progress: cp.Percent()}
	p.logger.Info("chunk processed", "file", filename,
		"processed", cp.Processed, "total", cp.Total,
		"success", len(res.Success), "exists", len(res.Exists), "errors", len(res.Error))
	return report, nil
}

// ProcessAll drives ProcessChunk until the playlist is fully imported and
// returns the accumulated result.
func (p *Processor) ProcessAll(ctx context.Context, filename string) (*ChunkReport, error) {
	total := NewResult()
	for {
		report, err := p.ProcessChunk(ctx, filename)
		if err != nil {
			return nil, err
		}
		total.Merge(report.Result)
		if report.Complete() {
			report.Result = total
			return report, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

// Reprocess discards any checkpoint and imports the playlist from the
// start. Already-imported entries land in the exists bucket.
func (p *Processor) Reprocess(ctx context.Context, filename string) (*ChunkReport, error) {
	path, err := p.resolve(filename)
	if err != nil {
		return nil, err
	}
	if err := RemoveCheckpoint(CheckpointPath(path)); err != nil {
		return nil, err
	}
	return p.ProcessAll(ctx, filename)
}

// ProcessContent imports raw playlist text in one pass, without checkpoints.
func (p *Processor) ProcessContent(ctx context.Context, content string) (Result, error) {
	if strings.TrimSpace(content) == "" {
		return Result{}, ErrNoContent
	}
	res, _, err := p.processRange(ctx, strings.NewReader(content), 0, -1)
	return res, err
}

// Files lists stored playlists with their import status.
func (p *Processor) Files() ([]FileStatus, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []FileStatus{}, nil
		}
		return nil, fmt.Errorf("read playlist dir: %w", err)
	}

	statuses := []FileStatus{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".m3u") {
			continue
		}
		path := filepath.Join(p.dir, name)
		cp, err := LoadCheckpoint(CheckpointPath(path))
		if err != nil {
			return nil, err
		}
		st := FileStatus{Name: name, Status: "complete"}
		if cp != nil {
			st.Total = cp.Total
			st.Processed = cp.Processed
			if cp.Processed < cp.Total {
				st.Status = "incomplete"
			}
		} else {
			total, err := countFile(path)
			if err != nil {
				return nil, err
			}
			st.Total = total
			st.Processed = total
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// Delete removes a stored playlist, its checkpoint, and every catalog
// record whose title matches an entry of the file. Returns the number of
// media rows removed.
func (p *Processor) Delete(ctx context.Context, filename string) (int, error) {
	path, err := p.resolve(filename)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open playlist: %w", err)
	}

	titles := map[string]struct{}{}
	sc := playlist.NewScanner(f)
	for {
		item, ok := sc.Next()
		if !ok {
			break
		}
		entry, err := playlist.ParseExtinf(item.Raw)
		if err != nil {
			continue
		}
		parts := playlist.SplitSeasonEpisode(entry.Title())
		// Stored titles are truncated on insert, so match against the
		// same truncation.
		titles[playlist.NormalizeTitle(truncate(parts.BaseTitle, maxTitleLen))] = struct{}{}
	}
	scanErr := sc.Err()
	f.Close()
	if scanErr != nil {
		return 0, fmt.Errorf("scan playlist: %w", scanErr)
	}

	removed := 0
	if len(titles) > 0 {
		tx, err := p.store.Begin()
		if err != nil {
			return 0, err
		}
		defer tx.Rollback()

		// SQLite lowercases only ASCII, so accented titles are matched
		// here instead of in the query.
		stored, err := tx.ListMediaTitles()
		if err != nil {
			return 0, err
		}
		for _, mt := range stored {
			if _, ok := titles[playlist.NormalizeTitle(mt.Title)]; !ok {
				continue
			}
			if err := tx.DeleteMediaCascade(mt.ID); err != nil {
				return 0, err
			}
			removed++
		}
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("commit delete: %w", err)
		}
	}

	if err := RemoveCheckpoint(CheckpointPath(path)); err != nil {
		return removed, err
	}
	if err := os.Remove(path); err != nil {
		return removed, fmt.Errorf("remove playlist: %w", err)
	}
	p.logger.Info("playlist deleted", "file", filename, "media_removed", removed)
	return removed, nil
}

// resolve validates a playlist filename and returns its path in the
// storage directory. Path traversal is rejected before touching the disk.
func (p *Processor) resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", ErrInvalidFilename
	}
	path := filepath.Join(p.dir, filename)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrFileNotFound
		}
		return "", fmt.Errorf("stat playlist: %w", err)
	}
	return path, nil
}

// openCheckpoint loads the checkpoint for a playlist, creating a fresh one
// from a full count when the import has not started.
func (p *Processor) openCheckpoint(path string) (*Checkpoint, error) {
	cp, err := LoadCheckpoint(CheckpointPath(path))
	if err != nil {
		return nil, err
	}
	if cp != nil {
		return cp, nil
	}
	total, err := countFile(path)
	if err != nil {
		return nil, err
	}
	return &Checkpoint{Total: total, Results: NewResult()}, nil
}

// processRange skips the first offset qualifying entries of r and imports
// up to limit of the rest inside one transaction. A negative limit means no
// bound. Returns the chunk result and how many entries were consumed.
func (p *Processor) processRange(ctx context.Context, r io.Reader, offset, limit int) (Result, int, error) {
	res := NewResult()
	sc := playlist.NewScanner(r)

	tx, err := p.store.Begin()
	if err != nil {
		return Result{}, 0, err
	}
	defer tx.Rollback()

	n := 0
	for {
		if limit >= 0 && n >= limit {
			break
		}
		item, ok := sc.Next()
		if !ok {
			break
		}
		if item.Index < offset {
			continue
		}
		n++

		entry, err := playlist.ParseExtinf(item.Raw)
		if err != nil {
			res.Error = append(res.Error, Outcome{URL: item.URL, Message: err.Error()})
			continue
		}
		outcome, existed, err := p.ingestor.Add(ctx, tx, entry)
		if err != nil {
			return Result{}, 0, fmt.Errorf("add entry %q: %w", entry.Title(), err)
		}
		if existed {
			res.Exists = append(res.Exists, outcome)
		} else {
			res.Success = append(res.Success, outcome)
		}
	}
	if err := sc.Err(); err != nil {
		return Result{}, 0, fmt.Errorf("scan playlist: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Result{}, 0, fmt.Errorf("commit chunk: %w", err)
	}
	return res, n, nil
}

func countFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open playlist: %w", err)
	}
	defer f.Close()
	n, err := playlist.CountEntries(f)
	if err != nil {
		return 0, fmt.Errorf("count playlist entries: %w", err)
	}
	return n, nil
}
