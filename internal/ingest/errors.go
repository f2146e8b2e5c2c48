package ingest

import "errors"

var (
	// ErrInvalidFilename indicates a missing or unsafe playlist filename.
	ErrInvalidFilename = errors.New("invalid playlist filename")

	// ErrNoContent indicates an empty playlist submission.
	ErrNoContent = errors.New("no playlist content provided")

	// ErrFileNotFound indicates the referenced playlist file is absent.
	ErrFileNotFound = errors.New("playlist file not found")

	// ErrImportBusy indicates another chunk invocation holds the per-file lock.
	ErrImportBusy = errors.New("import already in progress for this playlist")
)
