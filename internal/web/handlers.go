package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/csvqc/csvqc/internal/logging"
	"github.com/csvqc/csvqc/internal/profile"
	"github.com/csvqc/csvqc/internal/store"
)

const historyLimit = 100

// UploadResponse is the JSON body returned by POST /upload.
//
// A successful profile embeds the full report. When the CSV cannot be
// parsed the upload is still accepted: the file stays on disk, a
// degraded history row is written and ReadError carries the cause.
type UploadResponse struct {
	Message   string          `json:"message"`
	ID        uuid.UUID       `json:"id"`
	Filename  string          `json:"filename"`
	SavedTo   string          `json:"saved_to"`
	ReadError string          `json:"read_error,omitempty"`
	Report    *profile.Report `json:"report,omitempty"`
}

// handleUpload accepts a multipart CSV upload, saves it, profiles it
// and persists the report.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondError(w, r, http.StatusRequestEntityTooLarge, codeTooLarge, "file too large or invalid form", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeNoFile, "no file provided", err)
		return
	}
	defer file.Close()

	if !allowedFile(header.Filename) {
		respondError(w, r, http.StatusBadRequest, codeBadExtension, "only .csv files are accepted", nil)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeInternal, "failed to read file", err)
		return
	}

	filename := sanitizeFilename(header.Filename)
	savedTo := filepath.Join(s.cfg.Upload.Dir, uuid.NewString()+"_"+filename)
	if err := os.WriteFile(savedTo, data, 0o644); err != nil {
		respondError(w, r, http.StatusInternalServerError, codeInternal, "failed to save file", err)
		return
	}

	table, err := profile.LoadTable(data)
	if err != nil {
		// The upload itself succeeded, record it as degraded.
		logger.Warn("csv read failed", "filename", filename, "error", err)

		rec, insErr := s.store.InsertFailure(r.Context(), filename, savedTo, err.Error())
		if insErr != nil {
			respondError(w, r, http.StatusInternalServerError, codeStorage, "failed to record upload", insErr)
			return
		}

		writeJSON(w, UploadResponse{
			Message:   "Upload successful, but failed to read CSV for profiling.",
			ID:        rec.ID,
			Filename:  filename,
			SavedTo:   savedTo,
			ReadError: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	report := s.engine.Profile(ctx, table)

	rec, err := s.store.InsertReport(ctx, filename, savedTo, report)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeStorage, "failed to store report", err)
		return
	}

	logger.Info("profile completed",
		"report_id", rec.ID,
		"filename", filename,
		"rows", report.RowCount,
		"columns", report.ColumnCount,
	)

	writeJSON(w, UploadResponse{
		Message:  "Upload successful",
		ID:       rec.ID,
		Filename: filename,
		SavedTo:  savedTo,
		Report:   report,
	})
}

// handleAPIHistory returns the most recent profiling runs as JSON.
func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListRecent(r.Context(), historyLimit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeStorage, "failed to load history", err)
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	writeJSON(w, records)
}

// handleGetReport returns a single stored run including its report.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeBadRequest, "invalid report ID", err)
		return
	}

	rec, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, codeNotFound, "report not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, codeStorage, "failed to load report", err)
		return
	}

	writeJSON(w, rec)
}

// handleHealth reports process and database liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			writeJSON(w, map[string]string{"status": "degraded", "database": "unreachable"})
			return
		}
		status["database"] = "ok"
	}
	writeJSON(w, status)
}

// allowedFile reports whether the filename has an accepted extension.
func allowedFile(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".csv")
}

// sanitizeFilename reduces a client-supplied filename to a safe base
// name. Path separators and control characters are stripped.
func sanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	name := b.String()
	if name == "" || name == "." || name == ".." {
		return "upload.csv"
	}
	return name
}
