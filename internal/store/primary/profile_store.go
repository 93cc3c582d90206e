package primary

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"minbar/internal/models"
	"minbar/internal/store"
)

func (s *StoreImpl) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := `SELECT id, display_name, interest_embedding, created_at, updated_at
		FROM profiles WHERE id = $1`
	profile := &models.Profile{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&profile.ID, &profile.DisplayName, &profile.InterestEmbedding,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile %s: %w", id, err)
	}
	return profile, nil
}

// SetInterestEmbedding overwrites the profile's aggregate interest vector in
// place. Recomputed whole, never merged.
func (s *StoreImpl) SetInterestEmbedding(ctx context.Context, id uuid.UUID, embedding pgvector.Vector) error {
	query := `UPDATE profiles SET interest_embedding = $2, updated_at = now() WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, id, embedding)
	if err != nil {
		return fmt.Errorf("failed to set interest embedding for profile %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

var _ store.ProfileStore = (*StoreImpl)(nil)
