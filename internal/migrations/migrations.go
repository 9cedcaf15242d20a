// Package migrations owns the database schema. SQL files are embedded and applied with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed sql/*.sql
var embedded embed.FS

// Migrator applies the embedded migrations through a database/sql handle borrowed from the pool.
type Migrator struct {
	db       *sql.DB
	provider *goose.Provider
	logger   zerolog.Logger
}

// New builds a Migrator on top of pool. Close releases the sql.DB wrapper, not the pool.
func New(pool *pgxpool.Pool, logger *zerolog.Logger) (*Migrator, error) {
	fsys, err := fs.Sub(embedded, "sql")
	if err != nil {
		return nil, fmt.Errorf("migrations: open embedded fs: %w", err)
	}
	db := stdlib.OpenDBFromPool(pool)
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: new provider: %w", err)
	}
	return &Migrator{
		db:       db,
		provider: provider,
		logger:   logger.With().Str("component", "migrations").Logger(),
	}, nil
}

func (m *Migrator) Up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	for _, r := range results {
		m.logResult(r)
	}
	if err != nil {
		return fmt.Errorf("migrations: up: %w", err)
	}
	if len(results) == 0 {
		m.logger.Info().Msg("schema is up to date")
	}
	return nil
}

// Down rolls back the most recent migration only.
func (m *Migrator) Down(ctx context.Context) error {
	r, err := m.provider.Down(ctx)
	if r != nil {
		m.logResult(r)
	}
	if err != nil {
		return fmt.Errorf("migrations: down: %w", err)
	}
	return nil
}

func (m *Migrator) Status(ctx context.Context) error {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return fmt.Errorf("migrations: status: %w", err)
	}
	for _, s := range statuses {
		ev := m.logger.Info().
			Int64("version", s.Source.Version).
			Str("file", s.Source.Path).
			Str("state", string(s.State))
		if !s.AppliedAt.IsZero() {
			ev = ev.Time("applied_at", s.AppliedAt)
		}
		ev.Msg("migration")
	}
	return nil
}

func (m *Migrator) Close() error { return m.db.Close() }

func (m *Migrator) logResult(r *goose.MigrationResult) {
	ev := m.logger.Info()
	if r.Error != nil {
		ev = m.logger.Error().Err(r.Error)
	}
	ev.Int64("version", r.Source.Version).
		Str("file", r.Source.Path).
		Str("direction", r.Direction).
		Dur("duration", r.Duration).
		Msg("migration applied")
}
