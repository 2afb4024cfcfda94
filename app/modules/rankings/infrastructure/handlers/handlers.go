// Package rankingshandlers exposes rankings and drill stats over HTTP.
package rankingshandlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	rankingsservice "github.com/combine-day/combine-bot/app/modules/rankings/application"
	rosterdb "github.com/combine-day/combine-bot/app/modules/roster/infrastructure/repositories"
	"github.com/combine-day/combine-bot/internal/observability/attr"
)

// RankingsHandlers serves composite rankings, drill stats, and charts.
type RankingsHandlers struct {
	service *rankingsservice.RankingsService
	repo    rosterdb.Repository
	logger  *slog.Logger
}

// NewRankingsHandlers creates a new RankingsHandlers instance.
func NewRankingsHandlers(service *rankingsservice.RankingsService, repo rosterdb.Repository, logger *slog.Logger) *RankingsHandlers {
	return &RankingsHandlers{service: service, repo: repo, logger: logger}
}

// RegisterRoutes mounts the rankings endpoints under an event scope.
func (h *RankingsHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/api/events/{eventID}", func(r chi.Router) {
		r.Get("/rankings", h.HandleRankings)
		r.Get("/rankings/chart.png", h.HandleRankingChart)
		r.Get("/stats", h.HandleDrillStats)
	})
}

// HandleRankings returns the composite ranking for an event.
func (h *RankingsHandlers) HandleRankings(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	ranked, err := h.service.GetRankings(r.Context(), eventID)
	if err != nil {
		h.writeError(r, w, eventID, err)
		return
	}

	writeJSON(w, http.StatusOK, ranked)
}

// HandleRankingChart renders the top composite scores as a PNG bar chart.
func (h *RankingsHandlers) HandleRankingChart(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	png, err := h.service.RenderRankingChart(r.Context(), eventID)
	if err != nil {
		h.writeError(r, w, eventID, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// HandleDrillStats returns per-drill min/max/mean aggregates for an event.
func (h *RankingsHandlers) HandleDrillStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID := chi.URLParam(r, "eventID")

	schema, err := h.repo.GetEventSchema(ctx, eventID)
	if err != nil {
		h.writeError(r, w, eventID, err)
		return
	}
	athletes, err := h.repo.GetAthletesByEvent(ctx, eventID)
	if err != nil {
		h.writeError(r, w, eventID, err)
		return
	}

	writeJSON(w, http.StatusOK, rankingsservice.ComputeDrillStats(athletes, schema))
}

func (h *RankingsHandlers) writeError(r *http.Request, w http.ResponseWriter, eventID string, err error) {
	if errors.Is(err, rosterdb.ErrEventNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return
	}

	h.logger.ErrorContext(r.Context(), "Rankings request failed",
		attr.String("event_id", eventID),
		attr.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
