package rosterservice

import (
	"context"
	"errors"
	"fmt"
	"sync"

	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
	"github.com/combine-day/combine-bot/internal/observability/attr"
)

// ErrBatchTooLarge is returned when an upload exceeds the configured row
// limit for synchronous imports.
var ErrBatchTooLarge = errors.New("import batch exceeds row limit")

// normalizeWorkers bounds the fan-out for row normalization. Normalization is
// a pure function of immutable inputs, so rows can run in parallel; results
// land in their original slot to keep row order stable.
const normalizeWorkers = 8

// Plan resolves the mapping, normalizes and validates every row, and
// reconciles valid rows against the stored roster. It performs no writes.
func (s *ImportService) Plan(
	ctx context.Context,
	eventID string,
	table rosterdomain.RawTable,
	overrides map[string]rosterdomain.CanonicalField,
) (ImportPlan, error) {
	return withTelemetry(s, ctx, "PlanImport", eventID, func(ctx context.Context) (ImportPlan, error) {
		plan, _, err := s.plan(ctx, eventID, table, overrides)
		return plan, err
	})
}

// plan also returns the stored roster it reconciled against, so the commit
// stage can merge without a second fetch.
func (s *ImportService) plan(
	ctx context.Context,
	eventID string,
	table rosterdomain.RawTable,
	overrides map[string]rosterdomain.CanonicalField,
) (ImportPlan, []rosterdomain.ExistingAthlete, error) {
	if s.maxRows > 0 && len(table.Rows) > s.maxRows {
		return ImportPlan{}, nil, fmt.Errorf("%w: %d rows over limit of %d", ErrBatchTooLarge, len(table.Rows), s.maxRows)
	}

	schema, err := s.repo.GetEventSchema(ctx, eventID)
	if err != nil {
		return ImportPlan{}, nil, err
	}

	resolution := ResolveMapping(table.Headers, overrides, s.synonyms, schema)
	records := s.normalizeAll(table, resolution.Mapping, schema)
	states := ValidateRecords(resolution.Mapping, records)

	plan := ImportPlan{
		Mapping: resolution.Mapping,
		Records: records,
		States:  states,
	}

	if !resolution.Mapping.RequiredComplete() {
		// Mapping-stage condition, not a failure: every record stays in
		// AWAITING_REQUIRED_MAPPING and reconciliation is deferred.
		plan.AwaitingMapping = true
		s.logger.InfoContext(ctx, "Required identity fields not yet mapped",
			attr.String("event_id", eventID),
			attr.Int("rows", len(records)),
		)
		return plan, nil, nil
	}

	existing, err := s.repo.GetAthletesByEvent(ctx, eventID)
	if err != nil {
		return ImportPlan{}, nil, err
	}

	valid := make([]rosterdomain.NormalizedRecord, 0, len(records))
	for i, record := range records {
		if states[i] == rosterdomain.StateValid {
			valid = append(valid, record)
		}
	}

	plan.Decisions = Reconcile(valid, existing, s.policy)
	return plan, existing, nil
}

func (s *ImportService) normalizeAll(
	table rosterdomain.RawTable,
	mapping rosterdomain.ColumnMapping,
	schema rosterdomain.EventSchema,
) []rosterdomain.NormalizedRecord {
	records := make([]rosterdomain.NormalizedRecord, len(table.Rows))

	var wg sync.WaitGroup
	sem := make(chan struct{}, normalizeWorkers)
	for i := range table.Rows {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			records[i] = NormalizeRow(table.Rows[i], table.Headers, mapping, schema, nil)
		}(i)
	}
	wg.Wait()

	return records
}
