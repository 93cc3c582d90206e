package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minbar/internal/models"
	"minbar/internal/store"
)

// --- Mock match store ---

type matchCall struct {
	query       store.MatchQuery
	contentType models.ContentType
	exclude     uuid.UUID
}

type mockMatchStore struct {
	results []models.MatchResult
	calls   []matchCall
}

func (m *mockMatchStore) MatchProfiles(ctx context.Context, query pgvector.Vector, q store.MatchQuery) ([]models.MatchResult, error) {
	m.calls = append(m.calls, matchCall{query: q})
	return m.results, nil
}

func (m *mockMatchStore) MatchContent(ctx context.Context, query pgvector.Vector, contentType models.ContentType, q store.MatchQuery) ([]models.MatchResult, error) {
	m.calls = append(m.calls, matchCall{query: q, contentType: contentType})
	return m.results, nil
}

func (m *mockMatchStore) MatchContentExcluding(ctx context.Context, query pgvector.Vector, contentType models.ContentType, exclude uuid.UUID, q store.MatchQuery) ([]models.MatchResult, error) {
	m.calls = append(m.calls, matchCall{query: q, contentType: contentType, exclude: exclude})
	return m.results, nil
}

func TestMatchingService_RankProfilesIsUnbounded(t *testing.T) {
	matches := &mockMatchStore{results: []models.MatchResult{
		{ID: uuid.New(), Distance: 0.2},
		{ID: uuid.New(), Distance: 0.5},
		{ID: uuid.New(), Distance: 0.9},
	}}
	svc := NewMatchingService(matches, nil, 0.6, 25, 50)

	results, err := svc.RankProfiles(context.Background(), pgvector.NewVector([]float32{1}))
	require.NoError(t, err)
	// The fan-out ranking applies neither threshold nor limit even when a
	// search threshold is configured.
	assert.Len(t, results, 3)
	require.Len(t, matches.calls, 1)
	assert.Nil(t, matches.calls[0].query.MaxDistance)
	assert.Zero(t, matches.calls[0].query.Limit)
}

func TestMatchingService_SearchContentAppliesThresholdAndLimit(t *testing.T) {
	matches := &mockMatchStore{}
	embedder := &mockProvider{name: "openai", dimension: 2, vector: pgvector.NewVector([]float32{1, 0})}
	svc := NewMatchingService(matches, embedder, 0.6, 25, 50)

	_, err := svc.SearchContent(context.Background(), "golang jobs", models.ContentTypeJobPosting)
	require.NoError(t, err)
	assert.Equal(t, 1, embedder.calls)
	require.Len(t, matches.calls, 1)
	call := matches.calls[0]
	require.NotNil(t, call.query.MaxDistance)
	assert.Equal(t, 0.6, *call.query.MaxDistance)
	assert.Equal(t, 25, call.query.Limit)
	assert.Equal(t, models.ContentTypeJobPosting, call.contentType)
}

func TestMatchingService_SimilarContentExcludesSelf(t *testing.T) {
	matches := &mockMatchStore{}
	svc := NewMatchingService(matches, nil, 0.6, 25, 50)

	embedding := pgvector.NewVector([]float32{1, 0})
	content := &models.Content{
		ID:          uuid.New(),
		ContentType: models.ContentTypeJobPosting,
		Embedding:   &embedding,
	}
	_, err := svc.SimilarContent(context.Background(), content)
	require.NoError(t, err)
	require.Len(t, matches.calls, 1)
	assert.Equal(t, content.ID, matches.calls[0].exclude)
	assert.Equal(t, 50, matches.calls[0].query.Limit)
}

func TestMatchingService_SimilarContentRequiresEmbedding(t *testing.T) {
	svc := NewMatchingService(&mockMatchStore{}, nil, 0.6, 25, 50)

	_, err := svc.SimilarContent(context.Background(), &models.Content{ID: uuid.New()})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
}
