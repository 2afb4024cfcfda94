package rosterservice

import (
	"context"
	"sync"

	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
	rosterdb "github.com/combine-day/combine-bot/app/modules/roster/infrastructure/repositories"
)

// ------------------------
// Fake Roster Repo
// ------------------------

type FakeRosterRepo struct {
	mu     sync.Mutex
	trace  []string
	writes []rosterdb.AthleteWrite

	GetAthletesByEventFunc func(ctx context.Context, eventID string) ([]rosterdomain.ExistingAthlete, error)
	UpsertAthleteFunc      func(ctx context.Context, write rosterdb.AthleteWrite) error
	GetEventSchemaFunc     func(ctx context.Context, eventID string) (rosterdomain.EventSchema, error)
}

func NewFakeRosterRepo() *FakeRosterRepo {
	return &FakeRosterRepo{trace: []string{}}
}

func (f *FakeRosterRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeRosterRepo) GetAthletesByEvent(ctx context.Context, eventID string) ([]rosterdomain.ExistingAthlete, error) {
	f.record("GetAthletesByEvent")
	if f.GetAthletesByEventFunc != nil {
		return f.GetAthletesByEventFunc(ctx, eventID)
	}
	return nil, nil
}

func (f *FakeRosterRepo) UpsertAthlete(ctx context.Context, write rosterdb.AthleteWrite) error {
	f.record("UpsertAthlete")
	if f.UpsertAthleteFunc != nil {
		if err := f.UpsertAthleteFunc(ctx, write); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, write)
	return nil
}

func (f *FakeRosterRepo) GetEventSchema(ctx context.Context, eventID string) (rosterdomain.EventSchema, error) {
	f.record("GetEventSchema")
	if f.GetEventSchemaFunc != nil {
		return f.GetEventSchemaFunc(ctx, eventID)
	}
	return rosterdomain.EventSchema{EventID: eventID}, nil
}

// --- Accessors for assertions ---

func (f *FakeRosterRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.trace...)
}

func (f *FakeRosterRepo) Writes() []rosterdb.AthleteWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rosterdb.AthleteWrite{}, f.writes...)
}

func (f *FakeRosterRepo) WriteFor(id string) (rosterdb.AthleteWrite, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Last write wins, matching the store's upsert semantics.
	for i := len(f.writes) - 1; i >= 0; i-- {
		if f.writes[i].ID == id {
			return f.writes[i], true
		}
	}
	return rosterdb.AthleteWrite{}, false
}

// ------------------------
// Fake Event Bus
// ------------------------

type publishedEvent struct {
	topic   string
	payload any
}

type FakeEventBus struct {
	mu        sync.Mutex
	published []publishedEvent

	PublishFunc func(ctx context.Context, topic string, payload any) error
}

func NewFakeEventBus() *FakeEventBus {
	return &FakeEventBus{}
}

func (f *FakeEventBus) Publish(ctx context.Context, topic string, payload any) error {
	if f.PublishFunc != nil {
		if err := f.PublishFunc(ctx, topic, payload); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, publishedEvent{topic: topic, payload: payload})
	return nil
}

func (f *FakeEventBus) Close() error { return nil }

func (f *FakeEventBus) Published() []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedEvent{}, f.published...)
}
