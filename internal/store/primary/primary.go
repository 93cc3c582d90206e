// Package primary implements the store interfaces on PostgreSQL with the
// pgvector extension. It is the single source of truth for pipeline state;
// each stage writes only the fields it owns.
package primary

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StoreImpl implements the content, moderation, tag, profile and match store
// interfaces using PostgreSQL.
type StoreImpl struct {
	db *pgxpool.Pool
}

// NewStore creates a new PostgreSQL store implementation.
func NewStore(ctx context.Context, dsn string) (*StoreImpl, error) {
	if dsn == "" {
		return nil, errors.New("database DSN cannot be empty")
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database DSN: %w", err)
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &StoreImpl{db: dbpool}, nil
}

// Ping checks the database connection.
func (s *StoreImpl) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection pool.
func (s *StoreImpl) Close() {
	s.db.Close()
}

// Migrate creates the schema the pipeline needs. Idempotent.
func (s *StoreImpl) Migrate(ctx context.Context, dimension int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS profiles (
			id UUID PRIMARY KEY,
			display_name TEXT NOT NULL,
			interest_embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, dimension),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS content (
			id UUID PRIMARY KEY,
			content_type TEXT NOT NULL,
			author_id UUID NOT NULL REFERENCES profiles(id),
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			language TEXT,
			is_processed BOOLEAN NOT NULL DEFAULT FALSE,
			is_tagged BOOLEAN NOT NULL DEFAULT FALSE,
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, dimension),
		`CREATE TABLE IF NOT EXISTS moderation_reports (
			id UUID PRIMARY KEY,
			content_type TEXT NOT NULL,
			content_id UUID NOT NULL,
			author_id UUID NOT NULL,
			toxicity DOUBLE PRECISION NOT NULL,
			severe_toxicity DOUBLE PRECISION NOT NULL,
			obscene DOUBLE PRECISION NOT NULL,
			threat DOUBLE PRECISION NOT NULL,
			insult DOUBLE PRECISION NOT NULL,
			identity_attack DOUBLE PRECISION NOT NULL,
			sexual_explicit DOUBLE PRECISION NOT NULL,
			is_negative BOOLEAN NOT NULL,
			reason TEXT NOT NULL,
			is_resolved BOOLEAN NOT NULL,
			reporter_kind TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS tags (
			id BIGSERIAL PRIMARY KEY,
			english_name TEXT NOT NULL UNIQUE,
			arabic_name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS content_tags (
			content_id UUID NOT NULL REFERENCES content(id) ON DELETE CASCADE,
			tag_id BIGINT NOT NULL REFERENCES tags(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (content_id, tag_id)
		)`,
		`CREATE TABLE IF NOT EXISTS user_interests (
			profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			tag_id BIGINT NOT NULL REFERENCES tags(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (profile_id, tag_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
