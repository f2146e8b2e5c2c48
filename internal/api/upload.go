package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
)

const (
	maxUploadBytes = 256 << 20
	minFreeBytes   = 10 << 20
)

func (s *Server) uploadPlaylist(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "multipart field 'file' required")
		return
	}
	defer file.Close()

	name, err := sanitizeFilename(header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FILENAME", err.Error())
		return
	}

	dir := s.processor.Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		writeError(w, http.StatusInternalServerError, "STORAGE", err.Error())
		return
	}
	if err := checkWritable(dir); err != nil {
		writeError(w, http.StatusInsufficientStorage, "STORAGE", err.Error())
		return
	}

	// Serialize uploads so two concurrent requests cannot claim the same
	// collision-free name.
	lock := flock.New(filepath.Join(dir, ".upload.lock"))
	if err := lock.Lock(); err != nil {
		writeError(w, http.StatusInternalServerError, "STORAGE", err.Error())
		return
	}
	defer lock.Unlock()

	name = resolveCollision(dir, name)
	dst, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORAGE", err.Error())
		return
	}
	written, err := io.Copy(dst, file)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(dir, name))
		writeError(w, http.StatusInternalServerError, "STORAGE", err.Error())
		return
	}

	s.logger.Info("playlist uploaded", "file", name, "bytes", written)
	writeJSON(w, http.StatusCreated, map[string]any{
		"results": map[string]any{"name": name, "bytes": written},
	})
}

// sanitizeFilename reduces an uploaded filename to a safe basename with an
// .m3u extension.
func sanitizeFilename(raw string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(raw, "\\", "/"))
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid filename %q", raw)
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name = b.String()

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".m3u":
	case ".m3u8":
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".m3u"
	default:
		name += ".m3u"
	}
	if name == ".m3u" {
		return "", fmt.Errorf("invalid filename %q", raw)
	}
	return name, nil
}

// resolveCollision returns name, or a timestamped variant when a file with
// that name already exists.
func resolveCollision(dir, name string) string {
	if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
		return name
	}
	stem := strings.TrimSuffix(name, ".m3u")
	ts := time.Now().Unix()
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d_%d.m3u", stem, ts, n)
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
	}
}

// checkWritable verifies the playlist directory accepts writes and has a
// minimum of free space.
func checkWritable(dir string) error {
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("playlist dir not writable: %w", err)
	}
	probe.Close()
	_ = os.Remove(probe.Name())

	var st syscall.Statfs_t
	if err := syscall.Statfs(dir, &st); err != nil {
		return fmt.Errorf("statfs: %w", err)
	}
	if free := st.Bavail * uint64(st.Bsize); free < minFreeBytes {
		return fmt.Errorf("insufficient disk space: %d bytes free", free)
	}
	return nil
}
