// Package rosterevents declares the topics and payloads the roster module
// publishes on the event bus.
package rosterevents

import (
	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
)

const (
	// TopicImportCompleted fires once per successful commit. Downstream
	// read-through caches invalidate the listed aggregates for the event.
	TopicImportCompleted = "roster.import.completed"
)

// ImportCompletedPayloadV1 is the cache invalidation signal emitted after a
// commit. Fire-and-forget; consumers own retry semantics.
type ImportCompletedPayloadV1 struct {
	EventID    string                     `json:"event_id"`
	Aggregates []string                   `json:"aggregates"`
	Summary    rosterdomain.ImportSummary `json:"summary"`
}

// InvalidatedAggregates are the cached read models affected by a roster write.
var InvalidatedAggregates = []string{"roster", "rankings", "scorecards"}
