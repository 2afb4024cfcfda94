package rosterhandlers

import (
	"context"
	"sync"

	rosterservice "github.com/combine-day/combine-bot/app/modules/roster/application"
	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
)

// ------------------------
// Fake Import Service
// ------------------------

type FakeImportService struct {
	mu    sync.Mutex
	trace []string

	PreviewFunc   func(ctx context.Context, eventID string, table rosterdomain.RawTable, overrides map[string]rosterdomain.CanonicalField) (rosterservice.ImportPreview, error)
	PlanFunc      func(ctx context.Context, eventID string, table rosterdomain.RawTable, overrides map[string]rosterdomain.CanonicalField) (rosterservice.ImportPlan, error)
	RunImportFunc func(ctx context.Context, eventID string, table rosterdomain.RawTable, overrides map[string]rosterdomain.CanonicalField) (rosterservice.ImportOutcome, error)
}

func NewFakeImportService() *FakeImportService {
	return &FakeImportService{}
}

func (f *FakeImportService) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeImportService) Preview(ctx context.Context, eventID string, table rosterdomain.RawTable, overrides map[string]rosterdomain.CanonicalField) (rosterservice.ImportPreview, error) {
	f.record("Preview")
	if f.PreviewFunc != nil {
		return f.PreviewFunc(ctx, eventID, table, overrides)
	}
	return rosterservice.ImportPreview{}, nil
}

func (f *FakeImportService) Plan(ctx context.Context, eventID string, table rosterdomain.RawTable, overrides map[string]rosterdomain.CanonicalField) (rosterservice.ImportPlan, error) {
	f.record("Plan")
	if f.PlanFunc != nil {
		return f.PlanFunc(ctx, eventID, table, overrides)
	}
	return rosterservice.ImportPlan{}, nil
}

func (f *FakeImportService) RunImport(ctx context.Context, eventID string, table rosterdomain.RawTable, overrides map[string]rosterdomain.CanonicalField) (rosterservice.ImportOutcome, error) {
	f.record("RunImport")
	if f.RunImportFunc != nil {
		return f.RunImportFunc(ctx, eventID, table, overrides)
	}
	return rosterservice.ImportOutcome{Committed: true}, nil
}

func (f *FakeImportService) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.trace...)
}

// ------------------------
// Fake Enqueuer
// ------------------------

type FakeEnqueuer struct {
	mu       sync.Mutex
	enqueued []string

	EnqueueImportFunc func(ctx context.Context, eventID, filename string, data []byte, overrides map[string]rosterdomain.CanonicalField) (int64, error)
}

func (f *FakeEnqueuer) EnqueueImport(ctx context.Context, eventID, filename string, data []byte, overrides map[string]rosterdomain.CanonicalField) (int64, error) {
	f.mu.Lock()
	f.enqueued = append(f.enqueued, filename)
	f.mu.Unlock()
	if f.EnqueueImportFunc != nil {
		return f.EnqueueImportFunc(ctx, eventID, filename, data, overrides)
	}
	return 42, nil
}

func (f *FakeEnqueuer) Enqueued() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.enqueued...)
}
