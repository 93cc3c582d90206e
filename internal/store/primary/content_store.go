package primary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"minbar/internal/models"
	"minbar/internal/store"
)

const contentColumns = `id, content_type, author_id, title, body, language,
	is_processed, is_tagged, embedding, created_at, updated_at`

func scanContent(row pgx.Row) (*models.Content, error) {
	content := &models.Content{}
	var language *string
	err := row.Scan(
		&content.ID,
		&content.ContentType,
		&content.AuthorID,
		&content.Title,
		&content.Body,
		&language,
		&content.IsProcessed,
		&content.IsTagged,
		&content.Embedding,
		&content.CreatedAt,
		&content.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if language != nil {
		lang := models.Language(*language)
		content.Language = &lang
	}
	return content, nil
}

func (s *StoreImpl) CreateContent(ctx context.Context, content *models.Content) error {
	if content.ID == uuid.Nil {
		content.ID = uuid.New()
	}
	query := `
		INSERT INTO content (id, content_type, author_id, title, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING created_at, updated_at`

	now := time.Now()
	err := s.db.QueryRow(ctx, query,
		content.ID, content.ContentType, content.AuthorID, content.Title, content.Body, now,
	).Scan(&content.CreatedAt, &content.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique_violation
				return fmt.Errorf("content %s already exists: %w", content.ID, store.ErrDuplicate)
			case "23503": // foreign_key_violation
				return fmt.Errorf("author %s does not exist: %w", content.AuthorID, store.ErrForeignKeyViolation)
			}
		}
		return fmt.Errorf("failed to insert content: %w", err)
	}
	return nil
}

func (s *StoreImpl) GetContent(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content WHERE id = $1`
	content, err := scanContent(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get content %s: %w", id, err)
	}
	return content, nil
}

func (s *StoreImpl) DeleteContent(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete content %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *StoreImpl) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE content SET is_processed = TRUE, updated_at = now() WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark content %s processed: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *StoreImpl) SetTagged(ctx context.Context, id uuid.UUID, language models.Language) error {
	query := `UPDATE content SET is_tagged = TRUE, language = $2, updated_at = now() WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, id, string(language))
	if err != nil {
		return fmt.Errorf("failed to mark content %s tagged: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *StoreImpl) SetEmbedding(ctx context.Context, id uuid.UUID, embedding pgvector.Vector) error {
	query := `UPDATE content SET embedding = $2, updated_at = now() WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, id, embedding)
	if err != nil {
		return fmt.Errorf("failed to set embedding for content %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListUnprocessed returns content the moderation stage never finished,
// oldest first, for the periodic sweep.
func (s *StoreImpl) ListUnprocessed(ctx context.Context, limit int) ([]*models.Content, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + contentColumns + `
		FROM content WHERE is_processed = FALSE ORDER BY created_at ASC LIMIT $1`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed content: %w", err)
	}
	defer rows.Close()

	var contents []*models.Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content row: %w", err)
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating content rows: %w", err)
	}
	return contents, nil
}

var _ store.ContentStore = (*StoreImpl)(nil)
