// Package api implements the REST API for playlist imports.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/vodarr/vodarr/internal/dedupe"
	"github.com/vodarr/vodarr/internal/ingest"
)

// Server is the API server.
type Server struct {
	processor  *ingest.Processor
	reconciler *dedupe.Reconciler
	logger     *slog.Logger
}

// New creates a new API server.
func New(processor *ingest.Processor, reconciler *dedupe.Reconciler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		processor:  processor,
		reconciler: reconciler,
		logger:     logger.With("component", "api"),
	}
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Playlists
	mux.HandleFunc("POST /api/v1/playlists", s.uploadPlaylist)
	mux.HandleFunc("GET /api/v1/playlists", s.listPlaylists)
	mux.HandleFunc("DELETE /api/v1/playlists/{name}", s.deletePlaylist)
	mux.HandleFunc("POST /api/v1/playlists/{name}/process", s.processPlaylist)
	mux.HandleFunc("POST /api/v1/playlists/{name}/reprocess", s.reprocessPlaylist)

	// Raw content, no file stored
	mux.HandleFunc("POST /api/v1/process", s.processContent)

	// Duplicates
	mux.HandleFunc("GET /api/v1/duplicates", s.listDuplicates)
	mux.HandleFunc("POST /api/v1/duplicates/remove", s.removeDuplicates)
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// writeIngestError maps ingest sentinel errors to HTTP statuses.
func writeIngestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ingest.ErrInvalidFilename):
		writeError(w, http.StatusBadRequest, "INVALID_FILENAME", err.Error())
	case errors.Is(err, ingest.ErrNoContent):
		writeError(w, http.StatusBadRequest, "NO_CONTENT", err.Error())
	case errors.Is(err, ingest.ErrFileNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ingest.ErrImportBusy):
		writeError(w, http.StatusConflict, "IMPORT_BUSY", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func (s *Server) listPlaylists(w http.ResponseWriter, r *http.Request) {
	files, err := s.processor.Files()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": files})
}

func (s *Server) processPlaylist(w http.ResponseWriter, r *http.Request) {
	report, err := s.processor.ProcessChunk(r.Context(), r.PathValue("name"))
	if err != nil {
		writeIngestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) reprocessPlaylist(w http.ResponseWriter, r *http.Request) {
	report, err := s.processor.Reprocess(r.Context(), r.PathValue("name"))
	if err != nil {
		writeIngestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type processRequest struct {
	Content string `json:"content"`
}

func (s *Server) processContent(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 64<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		// Plain text playlist bodies are accepted as-is.
		req.Content = string(body)
	}

	res, err := s.processor.ProcessContent(r.Context(), req.Content)
	if err != nil {
		writeIngestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": res})
}

func (s *Server) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	removed, err := s.processor.Delete(r.Context(), r.PathValue("name"))
	if err != nil {
		writeIngestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": map[string]int{"media_removed": removed}})
}

func (s *Server) listDuplicates(w http.ResponseWriter, r *http.Request) {
	groups, err := s.reconciler.Find(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": groups})
}

func (s *Server) removeDuplicates(w http.ResponseWriter, r *http.Request) {
	report, err := s.reconciler.Remove(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": report})
}
