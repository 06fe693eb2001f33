// Package store persists datasets and import history in PostgreSQL.
//
// Tables are derived from the registered core datasets: one uuid primary
// key, one column per FieldSpec (date fields as DATE, everything else as
// TEXT) and created_at/updated_at timestamps. Every identifier is quoted,
// and column names used in queries come only from dataset definitions.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/memberdesk/internal/config"
	"github.com/JonMunkholm/memberdesk/internal/core"
)

// Store implements core.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ core.Store = (*Store)(nil)

// New wraps an open pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects a pool configured from cfg and verifies it with a ping.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate creates the tables for every registered dataset and the import
// history table. It only adds what is missing.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{importRunsDDL, importRunsIndexDDL}
	for _, ds := range core.All() {
		stmts = append(stmts, createTableSQL(ds))
		stmts = append(stmts, addColumnsSQL(ds)...)
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	slog.Info("database migrated", "datasets", core.Count())
	return nil
}
