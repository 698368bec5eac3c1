// Package server exposes the processing pipeline over HTTP, streaming
// progress to clients as server-sent events.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"subburn/internal/audio"
	"subburn/internal/logging"
	"subburn/internal/pipeline"
	"subburn/internal/store"
	"subburn/internal/subtitle"
)

// Runner executes a processing run, emitting events along the way.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request, emit pipeline.Emitter) error
}

// Server handles video upload, processing, and record retrieval.
type Server struct {
	records   *store.Store
	runner    Runner
	uploadDir string
	log       *logging.Logger
}

func New(records *store.Store, runner Runner, uploadDir string, log *logging.Logger) *Server {
	if log == nil {
		log = logging.NewNop()
	}
	return &Server{records: records, runner: runner, uploadDir: uploadDir, log: log}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/videos", s.handleUpload)
	mux.HandleFunc("GET /api/videos", s.handleList)
	mux.HandleFunc("GET /api/videos/{id}", s.handleGet)
	mux.HandleFunc("PUT /api/videos/{id}/segments", s.handleUpdateSegments)
	mux.HandleFunc("POST /api/videos/{id}/process", s.handleProcess)
	mux.HandleFunc("GET /api/videos/{id}/download", s.handleDownload)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

type recordResponse struct {
	ID         string             `json:"id"`
	Filename   string             `json:"filename"`
	Status     string             `json:"status"`
	Progress   int                `json:"progress"`
	Error      string             `json:"error,omitempty"`
	OutputPath string             `json:"output_path,omitempty"`
	Segments   []subtitle.Segment `json:"segments,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func toResponse(rec *store.Record) recordResponse {
	return recordResponse{
		ID:         rec.ID,
		Filename:   rec.Filename,
		Status:     rec.Status,
		Progress:   rec.Progress,
		Error:      rec.Error,
		OutputPath: rec.OutputPath,
		Segments:   rec.Segments,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload accepts a multipart upload under the "video" field, stores the
// file, and registers a record for it.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	const maxUpload = 2 << 30 // 2 GiB
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	file, header, err := r.FormFile("video")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("missing video file: %w", err))
		return
	}
	defer file.Close()

	if !audio.IsVideoFile(header.Filename) {
		reason := fmt.Errorf("unsupported file type: %s", filepath.Ext(header.Filename))
		if audio.IsAudioFile(header.Filename) {
			reason = fmt.Errorf("audio-only uploads are not supported: a video stream is required")
		}
		s.writeError(w, http.StatusUnsupportedMediaType, reason)
		return
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	ext := filepath.Ext(header.Filename)
	destPath := filepath.Join(s.uploadDir, uuid.NewString()+ext)
	dest, err := os.Create(destPath)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer dest.Close()

	if _, err := io.Copy(dest, file); err != nil {
		_ = os.Remove(destPath)
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("store upload: %w", err))
		return
	}

	rec, err := s.records.Create(r.Context(), header.Filename, destPath)
	if err != nil {
		_ = os.Remove(destPath)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.log.Infow("video uploaded", "record", rec.ID, "filename", header.Filename)
	s.writeJSON(w, http.StatusCreated, toResponse(rec))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.records.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	responses := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, toResponse(rec))
	}
	s.writeJSON(w, http.StatusOK, responses)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.records.GetRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toResponse(rec))
}

// handleUpdateSegments replaces a record's segments with caller-edited text,
// so a later process call can render them without re-translating.
func (s *Server) handleUpdateSegments(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.records.GetRecord(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}

	var segments []subtitle.Segment
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&segments); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode segments: %w", err))
			return
		}
	} else {
		// anything else is treated as SubRip text
		parsed, err := subtitle.ParseSRT(r.Body)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("parse subtitles: %w", err))
			return
		}
		segments = parsed
	}
	for i, seg := range segments {
		if !seg.Valid() {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("segment %d is invalid", i))
			return
		}
	}

	if err := s.records.UpdateSegments(r.Context(), id, segments); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"segments": len(segments)})
}

// handleProcess runs the pipeline for a record and streams progress events.
// Closing the connection cancels the run.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	rec, err := s.records.GetRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	req := pipeline.Request{
		RecordID:   rec.ID,
		VideoPath:  rec.SourcePath,
		SourceLang: r.FormValue("source_lang"),
		TargetLang: r.FormValue("target_lang"),
	}
	if req.TargetLang == "" {
		req.TargetLang = "en"
	}
	if raw := r.FormValue("font_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid font_size %q", raw))
			return
		}
		req.FontSize = size
	}
	// a record that already carries edited segments renders them directly;
	// reprocess=true forces a fresh transcription and translation
	if len(rec.Segments) > 0 && r.FormValue("reprocess") != "true" {
		req.Segments = rec.Segments
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	emit := func(ev pipeline.Event) {
		payload, err := json.Marshal(ev)
		if err != nil {
			s.log.Errorw("failed to encode event", "error", err)
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	if err := s.runner.Run(r.Context(), req, emit); err != nil {
		// terminal -1 event already streamed by the pipeline
		s.log.Errorw("processing run failed", "record", rec.ID, "error", err)
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	rec, err := s.records.GetRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if rec.Status != store.StatusCompleted || rec.OutputPath == "" {
		s.writeError(w, http.StatusConflict, fmt.Errorf("record %s has no completed output", rec.ID))
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "subtitled_"+rec.Filename))
	http.ServeFile(w, r, rec.OutputPath)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorw("failed to encode response", "error", err)
	}
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeError(w, http.StatusInternalServerError, err)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
