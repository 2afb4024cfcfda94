package rosterservice

import (
	"context"

	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
)

// Service is the import pipeline surface consumed by transport layers.
type Service interface {
	// Preview resolves headers and samples rows without touching the roster.
	Preview(ctx context.Context, eventID string, table rosterdomain.RawTable, overrides map[string]rosterdomain.CanonicalField) (ImportPreview, error)
	// Plan normalizes, validates, and reconciles a batch without committing.
	Plan(ctx context.Context, eventID string, table rosterdomain.RawTable, overrides map[string]rosterdomain.CanonicalField) (ImportPlan, error)
	// RunImport plans and commits a batch, returning the final summary.
	RunImport(ctx context.Context, eventID string, table rosterdomain.RawTable, overrides map[string]rosterdomain.CanonicalField) (ImportOutcome, error)
}

// ImportPreview is the mapping-stage view of an upload.
type ImportPreview struct {
	Headers               []string                                 `json:"headers"`
	SampleRows            []map[string]string                      `json:"sample_rows"`
	RowCount              int                                      `json:"row_count"`
	SuggestedMapping      map[string]rosterdomain.CanonicalField   `json:"suggested_mapping"`
	SuggestedDrillColumns []string                                 `json:"suggested_drill_columns,omitempty"`
	States                []rosterdomain.ValidationState           `json:"states"`
}

// ImportPlan is the pre-commit resolution of a batch.
type ImportPlan struct {
	Mapping         rosterdomain.ColumnMapping       `json:"mapping"`
	Records         []rosterdomain.NormalizedRecord  `json:"records"`
	States          []rosterdomain.ValidationState   `json:"states"`
	Decisions       []rosterdomain.Decision          `json:"decisions,omitempty"`
	AwaitingMapping bool                             `json:"awaiting_mapping"`
}

// ImportOutcome is the committed result of a batch.
type ImportOutcome struct {
	Plan    ImportPlan                 `json:"plan"`
	Summary rosterdomain.ImportSummary `json:"summary"`
	// Committed is false when the batch never reached the commit stage
	// (required mapping incomplete).
	Committed bool `json:"committed"`
}
