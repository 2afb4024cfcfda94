package rosterdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
)

// RosterDBImpl implements Repository on bun/Postgres.
type RosterDBImpl struct {
	DB *bun.DB
}

var _ Repository = (*RosterDBImpl)(nil)

func (db *RosterDBImpl) GetAthletesByEvent(ctx context.Context, eventID string) ([]rosterdomain.ExistingAthlete, error) {
	var athletes []Athlete
	err := db.DB.NewSelect().
		Model(&athletes).
		Where("event_id = ?", eventID).
		Order("last_name ASC", "first_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch athletes for event %s: %w", eventID, err)
	}

	out := make([]rosterdomain.ExistingAthlete, 0, len(athletes))
	for i := range athletes {
		out = append(out, athletes[i].toDomain())
	}
	return out, nil
}

func (db *RosterDBImpl) UpsertAthlete(ctx context.Context, write AthleteWrite) error {
	row := Athlete{
		ID:         write.ID,
		EventID:    write.EventID,
		FirstName:  write.FirstName,
		LastName:   write.LastName,
		Number:     write.Number,
		AgeGroup:   write.AgeGroup,
		ExternalID: write.ExternalID,
		TeamName:   write.TeamName,
		Position:   write.Position,
		Scores:     write.Scores,
		UpdatedAt:  time.Now().UTC(),
	}

	_, err := db.DB.NewInsert().
		Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("first_name = EXCLUDED.first_name").
		Set("last_name = EXCLUDED.last_name").
		Set("number = EXCLUDED.number").
		Set("age_group = EXCLUDED.age_group").
		Set("external_id = EXCLUDED.external_id").
		Set("team_name = EXCLUDED.team_name").
		Set("position = EXCLUDED.position").
		Set("scores = EXCLUDED.scores").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert athlete %s: %w", write.ID, err)
	}
	return nil
}

func (db *RosterDBImpl) GetEventSchema(ctx context.Context, eventID string) (rosterdomain.EventSchema, error) {
	var event Event
	err := db.DB.NewSelect().
		Model(&event).
		Where("id = ?", eventID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rosterdomain.EventSchema{}, fmt.Errorf("event %s: %w", eventID, ErrEventNotFound)
		}
		return rosterdomain.EventSchema{}, fmt.Errorf("failed to fetch event %s: %w", eventID, err)
	}

	return rosterdomain.EventSchema{EventID: event.ID, Drills: event.Drills}, nil
}
