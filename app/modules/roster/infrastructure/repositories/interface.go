package rosterdb

import (
	"context"

	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
)

// AthleteWrite is the full write model for one upsert. The service layer is
// responsible for merge semantics; the repository writes what it is given.
type AthleteWrite struct {
	ID         string
	EventID    string
	FirstName  string
	LastName   string
	Number     *int
	AgeGroup   string
	ExternalID string
	TeamName   string
	Position   string
	Scores     map[string]float64
}

// Repository is the roster store boundary used by the import pipeline.
type Repository interface {
	// GetAthletesByEvent returns the full stored roster for an event.
	GetAthletesByEvent(ctx context.Context, eventID string) ([]rosterdomain.ExistingAthlete, error)
	// UpsertAthlete inserts or fully replaces one athlete row by id.
	UpsertAthlete(ctx context.Context, write AthleteWrite) error
	// GetEventSchema returns the event's scoring schema.
	GetEventSchema(ctx context.Context, eventID string) (rosterdomain.EventSchema, error)
}
