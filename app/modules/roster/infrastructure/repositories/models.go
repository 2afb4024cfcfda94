package rosterdb

import (
	"time"

	"github.com/uptrace/bun"

	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
)

// Athlete is the bun model backing the athletes table. Scores live in a JSONB
// column keyed by canonical drill key.
type Athlete struct {
	bun.BaseModel `bun:"table:athletes,alias:a"`

	ID         string             `bun:"id,pk"`
	EventID    string             `bun:"event_id,notnull"`
	FirstName  string             `bun:"first_name,notnull"`
	LastName   string             `bun:"last_name,notnull"`
	Number     *int               `bun:"number"`
	AgeGroup   string             `bun:"age_group,nullzero"`
	ExternalID string             `bun:"external_id,nullzero"`
	TeamName   string             `bun:"team_name,nullzero"`
	Position   string             `bun:"position,nullzero"`
	Scores     map[string]float64 `bun:"scores,type:jsonb"`
	CreatedAt  time.Time          `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time          `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Event is the bun model backing the events table. The scoring schema is
// stored denormalized as JSONB; the import engine only ever reads it whole.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID        string                     `bun:"id,pk"`
	Name      string                     `bun:"name,notnull"`
	Drills    []rosterdomain.DrillDefinition `bun:"drills,type:jsonb"`
	CreatedAt time.Time                  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (a *Athlete) toDomain() rosterdomain.ExistingAthlete {
	return rosterdomain.ExistingAthlete{
		ID:         a.ID,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Number:     a.Number,
		AgeGroup:   a.AgeGroup,
		ExternalID: a.ExternalID,
		TeamName:   a.TeamName,
		Position:   a.Position,
		Scores:     a.Scores,
	}
}
