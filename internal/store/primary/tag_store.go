package primary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"minbar/internal/models"
	"minbar/internal/store"
)

// --- Tag Management ---

// GetOrCreateTags deduplicates the proposed tags against the store by exact
// match on either name variant and inserts only the new ones. Runs in a
// transaction so a failed run commits nothing.
func (s *StoreImpl) GetOrCreateTags(ctx context.Context, proposed []models.Tag) ([]*models.Tag, error) {
	if len(proposed) == 0 {
		return []*models.Tag{}, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tag transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var tags []*models.Tag
	for _, p := range proposed {
		englishName := strings.TrimSpace(p.EnglishName)
		arabicName := strings.TrimSpace(p.ArabicName)
		if englishName == "" || arabicName == "" {
			continue
		}

		query := `SELECT id, english_name, arabic_name, description, created_at, updated_at
			FROM tags WHERE english_name = $1 OR arabic_name = $2`
		tag := &models.Tag{}
		err := tx.QueryRow(ctx, query, englishName, arabicName).Scan(
			&tag.ID, &tag.EnglishName, &tag.ArabicName, &tag.Description,
			&tag.CreatedAt, &tag.UpdatedAt,
		)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("failed to look up tag '%s': %w", englishName, err)
			}
			// Not found, create it.
			now := time.Now()
			tag = &models.Tag{
				EnglishName: englishName,
				ArabicName:  arabicName,
				Description: strings.TrimSpace(p.Description),
			}
			insert := `INSERT INTO tags (english_name, arabic_name, description, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $4)
				RETURNING id, created_at, updated_at`
			if err := tx.QueryRow(ctx, insert, tag.EnglishName, tag.ArabicName, tag.Description, now).
				Scan(&tag.ID, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
				return nil, fmt.Errorf("failed to create tag '%s': %w", englishName, err)
			}
		}
		tags = append(tags, tag)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tag transaction: %w", err)
	}
	return tags, nil
}

func (s *StoreImpl) AddTagsToContent(ctx context.Context, contentID uuid.UUID, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	for _, tagID := range tagIDs {
		query := `
			INSERT INTO content_tags (content_id, tag_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`
		if _, err := s.db.Exec(ctx, query, contentID, tagID, time.Now()); err != nil {
			return fmt.Errorf("failed to add tag %d to content %s: %w", tagID, contentID, err)
		}
	}
	return nil
}

func (s *StoreImpl) AddTagsToProfile(ctx context.Context, profileID uuid.UUID, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	for _, tagID := range tagIDs {
		query := `
			INSERT INTO user_interests (profile_id, tag_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`
		if _, err := s.db.Exec(ctx, query, profileID, tagID, time.Now()); err != nil {
			return fmt.Errorf("failed to add tag %d to profile %s: %w", tagID, profileID, err)
		}
	}
	return nil
}

func (s *StoreImpl) GetContentTags(ctx context.Context, contentID uuid.UUID) ([]*models.Tag, error) {
	query := `
		SELECT t.id, t.english_name, t.arabic_name, t.description, t.created_at, t.updated_at
		FROM tags t
		JOIN content_tags ct ON t.id = ct.tag_id
		WHERE ct.content_id = $1
		ORDER BY t.english_name ASC`
	return s.queryTags(ctx, query, contentID)
}

func (s *StoreImpl) GetProfileTags(ctx context.Context, profileID uuid.UUID) ([]*models.Tag, error) {
	query := `
		SELECT t.id, t.english_name, t.arabic_name, t.description, t.created_at, t.updated_at
		FROM tags t
		JOIN user_interests ui ON t.id = ui.tag_id
		WHERE ui.profile_id = $1
		ORDER BY t.english_name ASC`
	return s.queryTags(ctx, query, profileID)
}

func (s *StoreImpl) queryTags(ctx context.Context, query string, arg any) ([]*models.Tag, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		tag := &models.Tag{}
		if err := rows.Scan(
			&tag.ID, &tag.EnglishName, &tag.ArabicName, &tag.Description,
			&tag.CreatedAt, &tag.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}
	return tags, nil
}

var _ store.TagStore = (*StoreImpl)(nil)
