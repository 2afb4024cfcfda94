package rosterqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	rosterservice "github.com/combine-day/combine-bot/app/modules/roster/application"
	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
	"github.com/combine-day/combine-bot/app/modules/roster/infrastructure/parsers"
	"github.com/combine-day/combine-bot/internal/observability/attr"
)

// ImportWorker executes queued roster imports.
type ImportWorker struct {
	river.WorkerDefaults[ImportJob]
	service       rosterservice.Service
	parserFactory *parsers.Factory
	logger        *slog.Logger
}

// NewImportWorker creates a new ImportWorker.
func NewImportWorker(service rosterservice.Service, parserFactory *parsers.Factory, logger *slog.Logger) *ImportWorker {
	return &ImportWorker{
		service:       service,
		parserFactory: parserFactory,
		logger:        logger,
	}
}

// Work parses the stored file and runs the import end to end.
func (w *ImportWorker) Work(ctx context.Context, job *river.Job[ImportJob]) error {
	args := job.Args

	w.logger.InfoContext(ctx, "Processing queued roster import",
		attr.Int64("job_id", job.ID),
		attr.String("event_id", args.EventID),
		attr.String("filename", args.Filename),
	)

	parser, err := w.parserFactory.GetParser(args.Filename)
	if err != nil {
		// Retrying an unsupported file type will never succeed.
		return river.JobCancel(fmt.Errorf("unsupported import file %q: %w", args.Filename, err))
	}

	table, err := parser.Parse(args.FileData)
	if err != nil {
		return river.JobCancel(fmt.Errorf("failed to parse import file %q: %w", args.Filename, err))
	}

	overrides := make(map[string]rosterdomain.CanonicalField, len(args.Overrides))
	for header, field := range args.Overrides {
		overrides[header] = rosterdomain.CanonicalField(field)
	}

	outcome, err := w.service.RunImport(ctx, args.EventID, table, overrides)
	if err != nil {
		return fmt.Errorf("queued import failed: %w", err)
	}

	if !outcome.Committed {
		// The mapping gap needs operator input; a retry sees the same headers.
		return river.JobCancel(fmt.Errorf("import for event %s is awaiting required column mapping", args.EventID))
	}

	w.logger.InfoContext(ctx, "Queued roster import committed",
		attr.Int64("job_id", job.ID),
		attr.String("event_id", args.EventID),
		attr.Int("total_rows", outcome.Summary.TotalRows),
		attr.Int("created", outcome.Summary.Created),
		attr.Int("updated", outcome.Summary.Updated),
		attr.Int("skipped", outcome.Summary.Skipped),
		attr.Int("failed", outcome.Summary.Failed),
	)
	return nil
}
