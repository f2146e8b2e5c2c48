package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vodarr/vodarr/internal/catalog"
	"github.com/vodarr/vodarr/internal/ingest"
)

const samplePlaylist = `#EXTM3U
#EXTINF:-1 tvg-logo="http://img/matrix.jpg" group-title="Filmes",Matrix
http://cdn/matrix.mp4
#EXTINF:-1 group-title="Séries",Dark S01E01
http://cdn/dark-s01e01.mp4
#EXTINF:-1 group-title="Séries",Dark S01E02
http://cdn/dark-s01e02.mp4
`

func setupProcessor(t *testing.T, chunkSize int) (*ingest.Processor, *catalog.Store, string) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := setupStore(t)
	ing := ingest.NewIngestor(echoResolver(ctrl), testLogger())
	dir := t.TempDir()
	return ingest.NewProcessor(store, ing, dir, chunkSize, testLogger()), store, dir
}

func writePlaylist(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestProcessor_ChunkedImport(t *testing.T) {
	proc, store, dir := setupProcessor(t, 2)
	writePlaylist(t, dir, "lista.m3u", samplePlaylist)
	ctx := context.Background()

	report, err := proc.ProcessChunk(ctx, "lista.m3u")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 3, report.Total)
	assert.False(t, report.Complete())
	assert.Len(t, report.Result.Success, 2)
	assert.InDelta(t, 66.6, report.Progress, 0.5)

	// The partial import is checkpointed on disk.
	cp, err := ingest.LoadCheckpoint(ingest.CheckpointPath(filepath.Join(dir, "lista.m3u")))
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, 2, cp.Processed)
	assert.Equal(t, 3, cp.Total)
	assert.Len(t, cp.Results.Success, 2)

	report, err = proc.ProcessChunk(ctx, "lista.m3u")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Processed)
	assert.True(t, report.Complete())
	assert.Len(t, report.Result.Success, 1)
	assert.Equal(t, float64(100), report.Progress)

	// Completion removes the checkpoint.
	cp, err = ingest.LoadCheckpoint(ingest.CheckpointPath(filepath.Join(dir, "lista.m3u")))
	require.NoError(t, err)
	assert.Nil(t, cp)

	count, err := store.CountMedia()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestProcessor_ProcessAll(t *testing.T) {
	proc, _, dir := setupProcessor(t, 1)
	writePlaylist(t, dir, "lista.m3u", samplePlaylist)

	report, err := proc.ProcessAll(context.Background(), "lista.m3u")
	require.NoError(t, err)
	assert.True(t, report.Complete())
	assert.Len(t, report.Result.Success, 3)
	assert.Empty(t, report.Result.Exists)
	assert.Empty(t, report.Result.Error)
}

func TestProcessor_ReprocessReportsExisting(t *testing.T) {
	proc, _, dir := setupProcessor(t, 10)
	writePlaylist(t, dir, "lista.m3u", samplePlaylist)
	ctx := context.Background()

	_, err := proc.ProcessAll(ctx, "lista.m3u")
	require.NoError(t, err)

	report, err := proc.Reprocess(ctx, "lista.m3u")
	require.NoError(t, err)
	assert.Empty(t, report.Result.Success)
	assert.Len(t, report.Result.Exists, 3)
}

func TestProcessor_MalformedEntryStillAdvances(t *testing.T) {
	proc, _, dir := setupProcessor(t, 10)
	// The second metadata line has no display name, so it cannot be parsed
	// but still occupies a slot and must not stall the import.
	content := `#EXTM3U
#EXTINF:-1 group-title="Filmes",Matrix
http://cdn/matrix.mp4
#EXTINF:-1 tvg-id="broken"
http://cdn/broken.mp4
`
	writePlaylist(t, dir, "lista.m3u", content)

	report, err := proc.ProcessAll(context.Background(), "lista.m3u")
	require.NoError(t, err)
	assert.True(t, report.Complete())
	assert.Equal(t, 2, report.Total)
	assert.Len(t, report.Result.Success, 1)
	require.Len(t, report.Result.Error, 1)
	assert.Equal(t, "http://cdn/broken.mp4", report.Result.Error[0].URL)
	assert.NotEmpty(t, report.Result.Error[0].Message)
}

func TestProcessor_LockedFileIsBusy(t *testing.T) {
	proc, _, dir := setupProcessor(t, 10)
	writePlaylist(t, dir, "lista.m3u", samplePlaylist)

	lock := flock.New(filepath.Join(dir, "lista.m3u") + ".lock")
	locked, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer lock.Unlock()

	_, err = proc.ProcessChunk(context.Background(), "lista.m3u")
	assert.ErrorIs(t, err, ingest.ErrImportBusy)
}

func TestProcessor_FilenameValidation(t *testing.T) {
	proc, _, _ := setupProcessor(t, 10)
	ctx := context.Background()

	_, err := proc.ProcessChunk(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, ingest.ErrInvalidFilename)

	_, err = proc.ProcessChunk(ctx, "")
	assert.ErrorIs(t, err, ingest.ErrInvalidFilename)

	_, err = proc.ProcessChunk(ctx, "nope.m3u")
	assert.ErrorIs(t, err, ingest.ErrFileNotFound)
}

func TestProcessor_ProcessContent(t *testing.T) {
	proc, store, _ := setupProcessor(t, 10)

	res, err := proc.ProcessContent(context.Background(), samplePlaylist)
	require.NoError(t, err)
	assert.Len(t, res.Success, 3)

	count, err := store.CountMedia()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestProcessor_ProcessContentEmpty(t *testing.T) {
	proc, _, _ := setupProcessor(t, 10)

	_, err := proc.ProcessContent(context.Background(), "  \n ")
	assert.ErrorIs(t, err, ingest.ErrNoContent)
}

func TestProcessor_Files(t *testing.T) {
	proc, _, dir := setupProcessor(t, 2)
	writePlaylist(t, dir, "pendente.m3u", samplePlaylist)
	writePlaylist(t, dir, "pronta.m3u", samplePlaylist)
	writePlaylist(t, dir, "notas.txt", "ignored")
	ctx := context.Background()

	_, err := proc.ProcessChunk(ctx, "pendente.m3u")
	require.NoError(t, err)
	_, err = proc.ProcessAll(ctx, "pronta.m3u")
	require.NoError(t, err)

	statuses, err := proc.Files()
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	byName := map[string]ingest.FileStatus{}
	for _, st := range statuses {
		byName[st.Name] = st
	}
	assert.Equal(t, "incomplete", byName["pendente.m3u"].Status)
	assert.Equal(t, 2, byName["pendente.m3u"].Processed)
	assert.Equal(t, 3, byName["pendente.m3u"].Total)
	assert.Equal(t, "complete", byName["pronta.m3u"].Status)
	assert.Equal(t, 3, byName["pronta.m3u"].Total)
}

func TestProcessor_Delete(t *testing.T) {
	proc, store, dir := setupProcessor(t, 10)
	writePlaylist(t, dir, "lista.m3u", samplePlaylist)
	ctx := context.Background()

	_, err := proc.ProcessAll(ctx, "lista.m3u")
	require.NoError(t, err)

	removed, err := proc.Delete(ctx, "lista.m3u")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	count, err := store.CountMedia()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = os.Stat(filepath.Join(dir, "lista.m3u"))
	assert.True(t, os.IsNotExist(err))
}

func TestProcessor_DeleteAccentedTitle(t *testing.T) {
	proc, store, dir := setupProcessor(t, 10)
	writePlaylist(t, dir, "lista.m3u", "#EXTM3U\n"+
		"#EXTINF:-1 group-title=\"Filmes\",Época\n"+
		"http://cdn/epoca.mp4\n")
	ctx := context.Background()

	_, err := proc.ProcessAll(ctx, "lista.m3u")
	require.NoError(t, err)

	removed, err := proc.Delete(ctx, "lista.m3u")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	count, err := store.CountMedia()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestProcessor_DeleteTruncatedTitle(t *testing.T) {
	proc, store, dir := setupProcessor(t, 10)
	long := strings.Repeat("a", 300)
	writePlaylist(t, dir, "lista.m3u", "#EXTM3U\n"+
		"#EXTINF:-1 group-title=\"Filmes\","+long+"\n"+
		"http://cdn/longa.mp4\n")
	ctx := context.Background()

	_, err := proc.ProcessAll(ctx, "lista.m3u")
	require.NoError(t, err)

	removed, err := proc.Delete(ctx, "lista.m3u")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	count, err := store.CountMedia()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestProcessor_EmptyPlaylistCompletesImmediately(t *testing.T) {
	proc, _, dir := setupProcessor(t, 10)
	writePlaylist(t, dir, "vazia.m3u", "#EXTM3U\n")

	report, err := proc.ProcessChunk(context.Background(), "vazia.m3u")
	require.NoError(t, err)
	assert.True(t, report.Complete())
	assert.Equal(t, float64(100), report.Progress)
	assert.Equal(t, 0, report.Total)
}
