package rosterservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
	rosterdb "github.com/combine-day/combine-bot/app/modules/roster/infrastructure/repositories"
	"github.com/combine-day/combine-bot/internal/eventbus"
	"github.com/combine-day/combine-bot/internal/observability"
	"github.com/combine-day/combine-bot/internal/observability/attr"
)

// ImportService implements the Service interface.
type ImportService struct {
	repo     rosterdb.Repository
	eventBus eventbus.EventBus
	logger   *slog.Logger
	metrics  observability.ImportMetrics
	tracer   trace.Tracer

	synonyms rosterdomain.SynonymTable
	policy   NullNumberPolicy
	maxRows  int
}

var _ Service = (*ImportService)(nil)

// NewImportService creates a new ImportService.
func NewImportService(
	repo rosterdb.Repository,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics observability.ImportMetrics,
	tracer trace.Tracer,
	policy NullNumberPolicy,
	maxRows int,
) *ImportService {
	return &ImportService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		synonyms: rosterdomain.DefaultSynonyms(),
		policy:   policy,
		maxRows:  maxRows,
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[T any] func(ctx context.Context) (T, error)

// withTelemetry wraps a service operation with tracing, metrics, and panic
// recovery.
func withTelemetry[T any](
	s *ImportService,
	ctx context.Context,
	operationName string,
	eventID string,
	op operationFunc[T],
) (result T, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("event_id", eventID),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, operationName+" triggered",
		attr.String("operation", operationName),
		attr.String("event_id", eventID),
		attr.ExtractCorrelationID(ctx),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.String("event_id", eventID),
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			span.RecordError(err)
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("event_id", eventID),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	s.metrics.RecordOperationSuccess(ctx, operationName)
	return result, nil
}
