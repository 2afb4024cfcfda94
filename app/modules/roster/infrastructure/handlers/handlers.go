// Package rosterhandlers exposes the import pipeline over HTTP.
package rosterhandlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	rosterservice "github.com/combine-day/combine-bot/app/modules/roster/application"
	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
	"github.com/combine-day/combine-bot/app/modules/roster/infrastructure/parsers"
	rosterdb "github.com/combine-day/combine-bot/app/modules/roster/infrastructure/repositories"
	"github.com/combine-day/combine-bot/internal/observability/attr"
)

// maxUploadBytes caps roster uploads at 16 MiB.
const maxUploadBytes = 16 << 20

// Enqueuer defers an import to the background queue.
type Enqueuer interface {
	EnqueueImport(ctx context.Context, eventID, filename string, data []byte, overrides map[string]rosterdomain.CanonicalField) (int64, error)
}

// Handlers is the HTTP surface of the roster module.
type Handlers interface {
	HandlePreview(w http.ResponseWriter, r *http.Request)
	HandlePlan(w http.ResponseWriter, r *http.Request)
	HandleImport(w http.ResponseWriter, r *http.Request)
}

// RosterHandlers implements Handlers on top of the import service.
type RosterHandlers struct {
	service        rosterservice.Service
	queue          Enqueuer
	parserFactory  *parsers.Factory
	logger         *slog.Logger
	tracer         trace.Tracer
	asyncThreshold int
}

// NewRosterHandlers creates a new RosterHandlers instance. A nil queue
// disables background imports; every batch then runs inline.
func NewRosterHandlers(
	service rosterservice.Service,
	queue Enqueuer,
	parserFactory *parsers.Factory,
	logger *slog.Logger,
	tracer trace.Tracer,
	asyncThreshold int,
) Handlers {
	return &RosterHandlers{
		service:        service,
		queue:          queue,
		parserFactory:  parserFactory,
		logger:         logger,
		tracer:         tracer,
		asyncThreshold: asyncThreshold,
	}
}

// upload is one decoded roster submission.
type upload struct {
	filename  string
	data      []byte
	table     rosterdomain.RawTable
	overrides map[string]rosterdomain.CanonicalField
}

// HandlePreview resolves the column mapping for an upload and samples rows
// without touching the roster.
func (h *RosterHandlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RosterHandlers.HandlePreview")
	defer span.End()

	eventID := chi.URLParam(r, "eventID")

	up, err := h.readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	preview, err := h.service.Preview(ctx, eventID, up.table, up.overrides)
	if err != nil {
		h.writeServiceError(ctx, w, eventID, "preview", err)
		return
	}

	writeJSON(w, http.StatusOK, preview)
}

// HandlePlan runs the full pipeline up to the commit boundary and returns the
// per-row decisions, so a client can show what an import would do.
func (h *RosterHandlers) HandlePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RosterHandlers.HandlePlan")
	defer span.End()

	eventID := chi.URLParam(r, "eventID")

	up, err := h.readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.service.Plan(ctx, eventID, up.table, up.overrides)
	if err != nil {
		h.writeServiceError(ctx, w, eventID, "plan", err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// HandleImport commits an upload. Batches above the async threshold are
// deferred to the queue and acknowledged with 202.
func (h *RosterHandlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RosterHandlers.HandleImport")
	defer span.End()

	eventID := chi.URLParam(r, "eventID")

	up, err := h.readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.queue != nil && h.asyncThreshold > 0 && len(up.table.Rows) > h.asyncThreshold {
		jobID, err := h.queue.EnqueueImport(ctx, eventID, up.filename, up.data, up.overrides)
		if err != nil {
			h.logger.ErrorContext(ctx, "Failed to enqueue import",
				attr.String("event_id", eventID),
				attr.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "failed to enqueue import")
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{
			"job_id":    jobID,
			"row_count": len(up.table.Rows),
		})
		return
	}

	outcome, err := h.service.RunImport(ctx, eventID, up.table, up.overrides)
	if err != nil {
		h.writeServiceError(ctx, w, eventID, "import", err)
		return
	}

	status := http.StatusOK
	if !outcome.Committed {
		// The required mapping is incomplete; nothing was written.
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, outcome)
}

// readUpload decodes a multipart submission: a "file" part (CSV or XLSX) or a
// "text" field with pasted spreadsheet rows, plus an optional "mapping" field
// holding a JSON object of header to canonical field overrides.
func (h *RosterHandlers) readUpload(r *http.Request) (upload, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return upload{}, errors.New("expected multipart form upload")
	}

	var up upload

	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return upload{}, errors.New("failed to read uploaded file")
		}
		up.filename = header.Filename
		up.data = data
	} else if text := r.FormValue("text"); text != "" {
		up.filename = "pasted.txt"
		up.data = []byte(text)
	} else {
		return upload{}, errors.New("missing file or text field")
	}

	parser, err := h.parserFactory.GetParser(up.filename)
	if err != nil {
		return upload{}, err
	}
	table, err := parser.Parse(up.data)
	if err != nil {
		return upload{}, err
	}
	up.table = table

	if raw := r.FormValue("mapping"); raw != "" {
		overrides := make(map[string]rosterdomain.CanonicalField)
		if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
			return upload{}, errors.New("mapping field is not a valid JSON object")
		}
		up.overrides = overrides
	}

	return up, nil
}

func (h *RosterHandlers) writeServiceError(ctx context.Context, w http.ResponseWriter, eventID, operation string, err error) {
	if errors.Is(err, rosterdb.ErrEventNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if errors.Is(err, rosterservice.ErrBatchTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	h.logger.ErrorContext(ctx, "Import request failed",
		attr.String("event_id", eventID),
		attr.String("operation", operation),
		attr.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
