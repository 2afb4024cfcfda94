package rosterservice

import (
	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
)

// NullNumberPolicy selects how same-named rows that both lack jersey numbers
// are treated within one batch. Cross-batch matching always requires a
// non-null number on both sides regardless of policy.
type NullNumberPolicy string

const (
	// PolicySkipBatchNullDuplicates auto-skips the later of two null-number
	// rows that share a name within the batch.
	PolicySkipBatchNullDuplicates NullNumberPolicy = "skip"
	// PolicyFlagForReview surfaces those rows for manual review instead of
	// skipping them.
	PolicyFlagForReview NullNumberPolicy = "review"
)

// ParsePolicy maps a config string to a policy, defaulting to skip.
func ParsePolicy(s string) NullNumberPolicy {
	if NullNumberPolicy(s) == PolicyFlagForReview {
		return PolicyFlagForReview
	}
	return PolicySkipBatchNullDuplicates
}

// Reconcile classifies each incoming record as NEW, UPDATE, or SKIP_DUPLICATE
// (or NEEDS_REVIEW under the review policy) against the stored roster and the
// earlier rows of the same batch. Evaluation is sequential in row order and
// the output preserves that order 1:1: later rows must see earlier rows'
// classifications.
//
// Matching rules:
//   - The stored-roster index contains only athletes with a non-null number;
//     an athlete with no stored number is never an update target by name alone.
//   - A record with a null number can match only earlier batch rows whose
//     number is also null, never the stored roster.
//   - When a row matches both a stored athlete and an earlier batch row, the
//     stored match wins: the row becomes an UPDATE into the same target rather
//     than being discarded.
//   - Age group is not part of the identity key.
func Reconcile(
	records []rosterdomain.NormalizedRecord,
	existing []rosterdomain.ExistingAthlete,
	policy NullNumberPolicy,
) []rosterdomain.Decision {
	rosterIndex := make(map[rosterdomain.IdentityKey]string, len(existing))
	for _, athlete := range existing {
		key := athlete.Identity()
		if !key.HasNumber {
			continue
		}
		rosterIndex[key] = athlete.ID
	}

	decisions := make([]rosterdomain.Decision, 0, len(records))
	seen := make(map[rosterdomain.IdentityKey]int, len(records))

	for _, record := range records {
		key := record.Identity()
		decision := rosterdomain.Decision{Row: record.Row}

		switch {
		case key.HasNumber:
			if targetID, ok := rosterIndex[key]; ok {
				decision.Kind = rosterdomain.DecisionUpdate
				decision.TargetID = targetID
			} else if firstRow, ok := seen[key]; ok {
				decision.Kind = rosterdomain.DecisionSkipDuplicate
				decision.DuplicateOfRow = firstRow
			} else {
				decision.Kind = rosterdomain.DecisionNew
			}

		default:
			// Null-number records never match the stored roster.
			if firstRow, ok := seen[key]; ok {
				if policy == PolicyFlagForReview {
					decision.Kind = rosterdomain.DecisionNeedsReview
				} else {
					decision.Kind = rosterdomain.DecisionSkipDuplicate
				}
				decision.DuplicateOfRow = firstRow
			} else {
				decision.Kind = rosterdomain.DecisionNew
			}
		}

		if _, ok := seen[key]; !ok {
			seen[key] = record.Row
		}
		decisions = append(decisions, decision)
	}

	return decisions
}
