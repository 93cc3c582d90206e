package primary

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"minbar/internal/models"
	"minbar/internal/store"
)

// Similarity queries use the pgvector cosine distance operator <=>. Results
// come back ordered by ascending distance; ordering among equal distances is
// whatever Postgres produces (non-deterministic).

func (s *StoreImpl) MatchProfiles(ctx context.Context, query pgvector.Vector, q store.MatchQuery) ([]models.MatchResult, error) {
	sql, args := profileMatchQuery(query, q)
	return s.queryMatches(ctx, sql, args)
}

func (s *StoreImpl) MatchContent(ctx context.Context, query pgvector.Vector, contentType models.ContentType, q store.MatchQuery) ([]models.MatchResult, error) {
	sql, args := contentMatchQuery(query, contentType, uuid.Nil, q)
	return s.queryMatches(ctx, sql, args)
}

func (s *StoreImpl) MatchContentExcluding(ctx context.Context, query pgvector.Vector, contentType models.ContentType, exclude uuid.UUID, q store.MatchQuery) ([]models.MatchResult, error) {
	sql, args := contentMatchQuery(query, contentType, exclude, q)
	return s.queryMatches(ctx, sql, args)
}

func profileMatchQuery(query pgvector.Vector, q store.MatchQuery) (string, []any) {
	sql := `SELECT id, interest_embedding <=> $1 AS distance
		FROM profiles
		WHERE interest_embedding IS NOT NULL`
	args := []any{query}
	if q.MaxDistance != nil {
		sql += fmt.Sprintf(" AND interest_embedding <=> $1 < $%d", len(args)+1)
		args = append(args, *q.MaxDistance)
	}
	return appendOrderAndLimit(sql, args, q)
}

func contentMatchQuery(query pgvector.Vector, contentType models.ContentType, exclude uuid.UUID, q store.MatchQuery) (string, []any) {
	sql := `SELECT id, embedding <=> $1 AS distance
		FROM content
		WHERE embedding IS NOT NULL AND content_type = $2`
	args := []any{query, contentType}
	if exclude != uuid.Nil {
		sql += fmt.Sprintf(" AND id <> $%d", len(args)+1)
		args = append(args, exclude)
	}
	if q.MaxDistance != nil {
		sql += fmt.Sprintf(" AND embedding <=> $1 < $%d", len(args)+1)
		args = append(args, *q.MaxDistance)
	}
	return appendOrderAndLimit(sql, args, q)
}

func appendOrderAndLimit(sql string, args []any, q store.MatchQuery) (string, []any) {
	sql += " ORDER BY distance ASC"
	if q.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, q.Limit)
	}
	return sql, args
}

func (s *StoreImpl) queryMatches(ctx context.Context, sql string, args []any) ([]models.MatchResult, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	defer rows.Close()

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.MatchResult, error) {
		var r models.MatchResult
		err := row.Scan(&r.ID, &r.Distance)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan similarity rows: %w", err)
	}
	return results, nil
}

var _ store.MatchStore = (*StoreImpl)(nil)
