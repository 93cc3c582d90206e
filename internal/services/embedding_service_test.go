package services

import (
	"context"
	"errors"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minbar/internal/models"
	"minbar/internal/store"
)

// --- Mock embedding provider ---

type mockProvider struct {
	name      string
	dimension int
	vector    pgvector.Vector
	err       error
	calls     int
}

func (m *mockProvider) Name() string                 { return m.name }
func (m *mockProvider) ModelName() string            { return m.name + "-model" }
func (m *mockProvider) Status() store.ProviderStatus { return store.ProviderStatusActive }
func (m *mockProvider) Dimension() int               { return m.dimension }

func (m *mockProvider) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	m.calls++
	if m.err != nil {
		return pgvector.Vector{}, m.err
	}
	return m.vector, nil
}

func TestFallbackEmbeddingService_UsesActiveProvider(t *testing.T) {
	primary := &mockProvider{name: "openai", dimension: 2, vector: pgvector.NewVector([]float32{1, 2})}
	svc, err := NewFallbackEmbeddingService([]EmbeddingProvider{primary}, fastRetry(1))
	require.NoError(t, err)

	vec, err := svc.GenerateEmbedding(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec.Slice())
	assert.Equal(t, 1, primary.calls)
}

func TestFallbackEmbeddingService_RotatesOnExhaustion(t *testing.T) {
	primary := &mockProvider{name: "openai", dimension: 2, err: errors.New("rate limited")}
	secondary := &mockProvider{name: "gemini", dimension: 2, vector: pgvector.NewVector([]float32{3, 4})}
	svc, err := NewFallbackEmbeddingService([]EmbeddingProvider{primary, secondary}, fastRetry(1))
	require.NoError(t, err)

	vec, err := svc.GenerateEmbedding(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 4}, vec.Slice())
	// Primary gets its full set of attempts before rotation.
	assert.Equal(t, 2, primary.calls)
	assert.Equal(t, 1, secondary.calls)

	// Subsequent calls go straight to the rotated provider.
	_, err = svc.GenerateEmbedding(context.Background(), "again")
	require.NoError(t, err)
	assert.Equal(t, 2, primary.calls)
	assert.Equal(t, 2, secondary.calls)
}

func TestFallbackEmbeddingService_AllProvidersFail(t *testing.T) {
	primary := &mockProvider{name: "openai", dimension: 2, err: errors.New("down")}
	secondary := &mockProvider{name: "gemini", dimension: 2, err: errors.New("also down")}
	svc, err := NewFallbackEmbeddingService([]EmbeddingProvider{primary, secondary}, fastRetry(1))
	require.NoError(t, err)

	_, err = svc.GenerateEmbedding(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrRemoteService)
}

func TestFallbackEmbeddingService_RejectsMismatchedDimensions(t *testing.T) {
	_, err := NewFallbackEmbeddingService([]EmbeddingProvider{
		&mockProvider{name: "openai", dimension: 1024},
		&mockProvider{name: "gemini", dimension: 768},
	}, fastRetry(1))
	require.Error(t, err)
}

func TestFallbackEmbeddingService_RequiresProviders(t *testing.T) {
	_, err := NewFallbackEmbeddingService(nil, fastRetry(1))
	require.Error(t, err)
}

func TestSimpleRetryStrategy_Backoff(t *testing.T) {
	strategy := &SimpleRetryStrategy{MaxAttempts: 3, BaseDelayMs: 200}
	assert.Equal(t, int64(200), strategy.NextBackoff(0))
	assert.Equal(t, int64(400), strategy.NextBackoff(1))
	assert.Equal(t, int64(800), strategy.NextBackoff(2))
	assert.Equal(t, int64(-1), strategy.NextBackoff(3))
}

func TestSimpleRetryStrategy_CapsAtThirtySeconds(t *testing.T) {
	strategy := &SimpleRetryStrategy{MaxAttempts: 20, BaseDelayMs: 10000}
	assert.Equal(t, int64(30000), strategy.NextBackoff(5))
}
