package rosterqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	rosterservice "github.com/combine-day/combine-bot/app/modules/roster/application"
	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
	"github.com/combine-day/combine-bot/app/modules/roster/infrastructure/parsers"
	"github.com/combine-day/combine-bot/internal/observability"
	"github.com/combine-day/combine-bot/internal/observability/attr"
)

// importQueue is the dedicated River queue for roster imports. Imports are
// heavy relative to default jobs, so the worker count stays small.
const importQueue = "imports"

// QueueService defines the contract for deferring large imports to River.
type QueueService interface {
	// EnqueueImport stores the upload as a job and returns its River job ID.
	EnqueueImport(ctx context.Context, eventID, filename string, data []byte, overrides map[string]rosterdomain.CanonicalField) (int64, error)
	// HealthCheck verifies the queue's database connection.
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service runs queued roster imports on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics observability.ImportMetrics
}

// NewService creates a River-based queue service for roster imports.
// River needs its own pgx pool; the bun connection cannot be shared.
func NewService(
	ctx context.Context,
	dsn string,
	importService rosterservice.Service,
	parserFactory *parsers.Factory,
	logger *slog.Logger,
	metrics observability.ImportMetrics,
) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_queue")

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_queue")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_queue")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_queue")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewImportWorker(importService, parserFactory, ctxLogger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			importQueue:        {MaxWorkers: 2},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_queue")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_queue")
	metrics.RecordOperationDuration(ctx, "initialize_queue", time.Since(start))

	ctxLogger.InfoContext(ctx, "Import queue service initialized")
	return &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		metrics: metrics,
	}, nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.InfoContext(ctx, "Import queue service started")
	return nil
}

// Stop drains and stops the River client, then closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()
	s.logger.InfoContext(ctx, "Import queue service stopped")
	return nil
}

// EnqueueImport stores the upload as a River job on the imports queue.
func (s *Service) EnqueueImport(
	ctx context.Context,
	eventID, filename string,
	data []byte,
	overrides map[string]rosterdomain.CanonicalField,
) (int64, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_import")

	job := ImportJob{
		EventID:  eventID,
		Filename: filename,
		FileData: data,
	}
	if len(overrides) > 0 {
		job.Overrides = make(map[string]string, len(overrides))
		for header, field := range overrides {
			job.Overrides[header] = string(field)
		}
	}

	result, err := s.client.Insert(ctx, job, &river.InsertOpts{
		Queue: importQueue,
	})
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "enqueue_import")
		return 0, fmt.Errorf("failed to enqueue import job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_import")
	s.metrics.RecordOperationDuration(ctx, "enqueue_import", time.Since(start))

	s.logger.InfoContext(ctx, "Import job enqueued",
		attr.Int64("job_id", result.Job.ID),
		attr.String("event_id", eventID),
		attr.String("filename", filename),
	)
	return result.Job.ID, nil
}

// HealthCheck verifies the queue's database connection.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
