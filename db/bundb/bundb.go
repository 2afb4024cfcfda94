// Package bundb owns the Postgres connection used by all modules.
package bundb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	rosterdb "github.com/combine-day/combine-bot/app/modules/roster/infrastructure/repositories"
)

// DBService bundles the bun connection and the per-module repositories.
type DBService struct {
	RosterDB *rosterdb.RosterDBImpl
	db       *bun.DB
}

// GetDB returns the underlying database connection pool.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// Close closes the database connection pool.
func (s *DBService) Close() error {
	return s.db.Close()
}

// NewBunDBService connects to Postgres and wires the repositories.
func NewBunDBService(ctx context.Context, dsn string) (*DBService, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	db.RegisterModel(&rosterdb.Athlete{})
	db.RegisterModel(&rosterdb.Event{})

	return &DBService{
		RosterDB: &rosterdb.RosterDBImpl{DB: db},
		db:       db,
	}, nil
}
