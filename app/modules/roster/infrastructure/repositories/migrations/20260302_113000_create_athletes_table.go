package rostermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS athletes (
				id TEXT PRIMARY KEY,
				event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL,
				number INTEGER,
				age_group TEXT,
				external_id TEXT,
				team_name TEXT,
				position TEXT,
				scores JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_athletes_event_id ON athletes(event_id);
			CREATE INDEX IF NOT EXISTS idx_athletes_event_external_id
				ON athletes(event_id, external_id) WHERE external_id IS NOT NULL;
		`)
		if err != nil {
			return fmt.Errorf("failed to create athletes table: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS athletes;`)
		if err != nil {
			return fmt.Errorf("failed to drop athletes table: %w", err)
		}
		return nil
	})
}
