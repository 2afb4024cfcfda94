// Package observability wires logging and metrics for the service.
package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process-wide slog logger. Production environments get
// JSON output; everything else gets the text handler for readability.
func NewLogger(environment string) *slog.Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// NoOpLogger discards everything. Used in tests.
var NoOpLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
