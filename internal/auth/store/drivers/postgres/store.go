// Package postgres implements the credential store on PostgreSQL via pgx.
// It is the option for multi-replica deployments where the embedded sqlite
// driver cannot be shared.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitalstudio/auth-service/internal/auth/store"
)

// uniqueViolation is the postgres error code for unique constraint failures.
const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Users() store.Users { return &usersRepo{pool: s.pool} }

// ApplyMigrations creates the schema if it does not exist yet. The schema is
// a single table, so plain DDL beats a migration toolchain here.
func (s *Store) ApplyMigrations(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			email         TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			requires_2fa  BOOLEAN NOT NULL DEFAULT FALSE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapUniqueViolation(err error) error {
	var perr *pgconn.PgError
	if errors.As(err, &perr) && perr.Code == uniqueViolation {
		return store.ErrAlreadyExists
	}
	return err
}
