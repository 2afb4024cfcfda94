package rosterservice

import (
	"context"

	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
	"github.com/combine-day/combine-bot/internal/observability/attr"
)

const previewSampleSize = 5

// Preview resolves the upload's headers against the synonym table and the
// event's scoring schema and samples the first rows, without reading or
// writing the roster beyond the schema lookup.
func (s *ImportService) Preview(
	ctx context.Context,
	eventID string,
	table rosterdomain.RawTable,
	overrides map[string]rosterdomain.CanonicalField,
) (ImportPreview, error) {
	return withTelemetry(s, ctx, "PreviewImport", eventID, func(ctx context.Context) (ImportPreview, error) {
		schema, err := s.repo.GetEventSchema(ctx, eventID)
		if err != nil {
			return ImportPreview{}, err
		}

		resolution := ResolveMapping(table.Headers, overrides, s.synonyms, schema)

		records := s.normalizeAll(table, resolution.Mapping, schema)
		states := ValidateRecords(resolution.Mapping, records)

		sample := make([]map[string]string, 0, previewSampleSize)
		for i, row := range table.Rows {
			if i >= previewSampleSize {
				break
			}
			cells := make(map[string]string, len(row.Cells))
			for k, v := range row.Cells {
				cells[k] = v
			}
			sample = append(sample, cells)
		}

		suggested := make(map[string]rosterdomain.CanonicalField, len(resolution.Mapping))
		for header, field := range resolution.Mapping {
			if field != rosterdomain.FieldIgnore {
				suggested[header] = field
			}
		}

		s.logger.InfoContext(ctx, "Import preview resolved",
			attr.String("event_id", eventID),
			attr.Int("row_count", len(table.Rows)),
			attr.Int("mapped_headers", len(suggested)),
			attr.Int("suggested_drill_columns", len(resolution.SuggestedDrillColumns)),
		)

		return ImportPreview{
			Headers:               table.Headers,
			SampleRows:            sample,
			RowCount:              len(table.Rows),
			SuggestedMapping:      suggested,
			SuggestedDrillColumns: resolution.SuggestedDrillColumns,
			States:                states,
		}, nil
	})
}
