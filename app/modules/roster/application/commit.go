package rosterservice

import (
	"context"
	"fmt"
	"sort"
	"sync"

	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
	rosterevents "github.com/combine-day/combine-bot/app/modules/roster/events"
	rosterdb "github.com/combine-day/combine-bot/app/modules/roster/infrastructure/repositories"
	"github.com/combine-day/combine-bot/internal/observability/attr"
)

// commitWorkers bounds concurrent writes. Writes to the same target athlete
// are grouped and serialized; distinct athletes proceed concurrently.
const commitWorkers = 8

// RunImport plans the batch and, when the required mapping is complete,
// commits it. Commit is all-or-nothing per row: a failed row is reported and
// the remaining rows continue.
func (s *ImportService) RunImport(
	ctx context.Context,
	eventID string,
	table rosterdomain.RawTable,
	overrides map[string]rosterdomain.CanonicalField,
) (ImportOutcome, error) {
	return withTelemetry(s, ctx, "RunImport", eventID, func(ctx context.Context) (ImportOutcome, error) {
		plan, existing, err := s.plan(ctx, eventID, table, overrides)
		if err != nil {
			return ImportOutcome{}, err
		}

		outcome := ImportOutcome{Plan: plan}
		outcome.Summary.TotalRows = len(plan.Records)

		if plan.AwaitingMapping {
			return outcome, nil
		}

		summary := s.commit(ctx, eventID, plan, existing)
		outcome.Summary = summary
		outcome.Committed = true

		s.metrics.RecordRowsProcessed(ctx, eventID, summary.TotalRows)
		s.metrics.RecordScoresWritten(ctx, eventID, summary.ScoresWritten)
		s.metrics.RecordDuplicatesSkipped(ctx, eventID, summary.Skipped)

		s.publishInvalidation(ctx, eventID, summary)

		return outcome, nil
	})
}

type commitItem struct {
	record   rosterdomain.NormalizedRecord
	decision rosterdomain.Decision
}

func (s *ImportService) commit(
	ctx context.Context,
	eventID string,
	plan ImportPlan,
	existing []rosterdomain.ExistingAthlete,
) rosterdomain.ImportSummary {
	summary := rosterdomain.ImportSummary{TotalRows: len(plan.Records)}

	existingByID := make(map[string]rosterdomain.ExistingAthlete, len(existing))
	for _, athlete := range existing {
		existingByID[athlete.ID] = athlete
	}

	recordsByRow := make(map[int]rosterdomain.NormalizedRecord, len(plan.Records))
	for _, record := range plan.Records {
		recordsByRow[record.Row] = record
	}

	// Invalid rows never reach the store; they are reported per-row, disjoint
	// from duplicate skips.
	for i, record := range plan.Records {
		if plan.States[i] != rosterdomain.StateValid {
			msgs := "row failed validation"
			if errs := MissingRequiredErrors(plan.Mapping, record); len(errs) > 0 {
				msgs = errs[0].Message
			} else if len(record.Errors) > 0 {
				msgs = record.Errors[0].Message
			}
			summary.Failed++
			summary.Failures = append(summary.Failures, rosterdomain.RowFailure{Row: record.Row, Message: msgs})
		}
	}

	// Group writable rows by target id so two rows merging into the same
	// athlete never race; later rows in a group see the earlier rows' scores.
	groups := make(map[string][]commitItem)
	var groupOrder []string

	for _, decision := range plan.Decisions {
		record := recordsByRow[decision.Row]

		switch decision.Kind {
		case rosterdomain.DecisionSkipDuplicate:
			summary.Skipped++
			summary.Skips = append(summary.Skips, rosterdomain.SkipRef{
				Row:            decision.Row,
				DuplicateOfRow: decision.DuplicateOfRow,
			})
			continue
		case rosterdomain.DecisionNeedsReview:
			summary.NeedsReview++
			continue
		}

		targetID := decision.TargetID
		if targetID == "" {
			targetID = rosterdomain.GenerateAthleteID(eventID, record.FirstName, record.LastName, record.Number)
		}

		if _, ok := groups[targetID]; !ok {
			groupOrder = append(groupOrder, targetID)
		}
		groups[targetID] = append(groups[targetID], commitItem{
			record:   record,
			decision: decision,
		})
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, commitWorkers)
	)

	for _, targetID := range groupOrder {
		items := groups[targetID]
		wg.Add(1)
		sem <- struct{}{}
		go func(targetID string, items []commitItem) {
			defer wg.Done()
			defer func() { <-sem }()

			prev, exists := existingByID[targetID]

			for _, item := range items {
				write := s.buildWrite(eventID, targetID, item, prev, exists)

				if err := s.repo.UpsertAthlete(ctx, write); err != nil {
					s.logger.ErrorContext(ctx, "Failed to commit row",
						attr.String("event_id", eventID),
						attr.Int("row", item.record.Row),
						attr.Error(err),
					)
					mu.Lock()
					summary.Failed++
					summary.Failures = append(summary.Failures, rosterdomain.RowFailure{
						Row:     item.record.Row,
						Message: fmt.Sprintf("store write failed: %v", err),
					})
					mu.Unlock()
					continue
				}

				mu.Lock()
				if item.decision.Kind == rosterdomain.DecisionUpdate || exists {
					summary.Updated++
				} else {
					summary.Created++
				}
				summary.ScoresWritten += len(item.record.Scores)
				mu.Unlock()

				// Later rows merging into the same target must see this write.
				prev = rosterdomain.ExistingAthlete{
					ID:         write.ID,
					FirstName:  write.FirstName,
					LastName:   write.LastName,
					Number:     write.Number,
					AgeGroup:   write.AgeGroup,
					ExternalID: write.ExternalID,
					TeamName:   write.TeamName,
					Position:   write.Position,
					Scores:     write.Scores,
				}
				exists = true
			}
		}(targetID, items)
	}
	wg.Wait()

	sort.Slice(summary.Failures, func(i, j int) bool { return summary.Failures[i].Row < summary.Failures[j].Row })
	sort.Slice(summary.Skips, func(i, j int) bool { return summary.Skips[i].Row < summary.Skips[j].Row })

	return summary
}

// buildWrite assembles the row to store. For updates, scores merge under the
// overwrite-only-on-presence rule and identity fields change only when they
// were actually mapped in this import, so an unmapped column can never null
// out a previously stored value.
func (s *ImportService) buildWrite(
	eventID, targetID string,
	item commitItem,
	prev rosterdomain.ExistingAthlete,
	exists bool,
) rosterdb.AthleteWrite {
	record := item.record
	write := rosterdb.AthleteWrite{
		ID:         targetID,
		EventID:    eventID,
		FirstName:  record.FirstName,
		LastName:   record.LastName,
		Number:     record.Number,
		AgeGroup:   record.AgeGroup,
		ExternalID: record.ExternalID,
		TeamName:   record.TeamName,
		Position:   record.Position,
		Scores:     record.Scores,
	}

	if !exists {
		return write
	}

	write.Scores = MergeScores(prev.Scores, record.Scores)

	if record.Number == nil {
		write.Number = prev.Number
	}
	if !record.MappedFields[rosterdomain.FieldAgeGroup] || record.AgeGroup == "" {
		write.AgeGroup = prev.AgeGroup
	}
	if !record.MappedFields[rosterdomain.FieldExternalID] || record.ExternalID == "" {
		write.ExternalID = prev.ExternalID
	}
	if !record.MappedFields[rosterdomain.FieldTeamName] || record.TeamName == "" {
		write.TeamName = prev.TeamName
	}
	if !record.MappedFields[rosterdomain.FieldPosition] || record.Position == "" {
		write.Position = prev.Position
	}
	return write
}

func (s *ImportService) publishInvalidation(ctx context.Context, eventID string, summary rosterdomain.ImportSummary) {
	if s.eventBus == nil {
		return
	}

	payload := rosterevents.ImportCompletedPayloadV1{
		EventID:    eventID,
		Aggregates: rosterevents.InvalidatedAggregates,
		Summary:    summary,
	}

	// Fire-and-forget: a missed invalidation only delays cache refresh.
	if err := s.eventBus.Publish(ctx, rosterevents.TopicImportCompleted, payload); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish import completed event",
			attr.String("event_id", eventID),
			attr.Error(err),
		)
	}
}
