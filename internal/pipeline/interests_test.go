package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minbar/internal/models"
	"minbar/internal/store"
)

func TestInterestUpdater_RecomputesEmbedding(t *testing.T) {
	profile := &models.Profile{ID: uuid.New(), DisplayName: "Test User"}
	profiles := newMockProfileStore(profile)
	tagStore := newMockTagStore()
	tagStore.profileTags[profile.ID] = []*models.Tag{
		{ID: 1, EnglishName: "golang", ArabicName: "لغة جو", Description: "The Go language."},
		{ID: 2, EnglishName: "cooking", ArabicName: "الطبخ", Description: "Preparing food."},
	}
	embedder := &mockEmbedder{vector: pgvector.NewVector([]float32{0.4, 0.6})}
	updater := &InterestUpdater{Embedder: embedder, Tags: tagStore, Profiles: profiles}

	err := updater.Run(context.Background(), profile.ID)
	require.NoError(t, err)

	// Every tag's full text feeds the embedding.
	require.Len(t, embedder.texts, 1)
	assert.Equal(t,
		"golang لغة جو The Go language. cooking الطبخ Preparing food. ",
		embedder.texts[0])

	stored, ok := profiles.interestEmbeddings[profile.ID]
	require.True(t, ok)
	assert.Equal(t, []float32{0.4, 0.6}, stored.Slice())
}

func TestInterestUpdater_NoTagsLeavesEmbeddingUnchanged(t *testing.T) {
	profile := &models.Profile{ID: uuid.New()}
	profiles := newMockProfileStore(profile)
	embedder := &mockEmbedder{vector: pgvector.NewVector([]float32{1})}
	updater := &InterestUpdater{Embedder: embedder, Tags: newMockTagStore(), Profiles: profiles}

	err := updater.Run(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.Empty(t, embedder.texts)
	assert.Empty(t, profiles.interestEmbeddings)
}

func TestInterestUpdater_EmbeddingFailurePreservesVector(t *testing.T) {
	profile := &models.Profile{ID: uuid.New()}
	profiles := newMockProfileStore(profile)
	tagStore := newMockTagStore()
	tagStore.profileTags[profile.ID] = []*models.Tag{
		{ID: 1, EnglishName: "golang"},
	}
	updater := &InterestUpdater{
		Embedder: &mockEmbedder{err: errors.New("all providers failed")},
		Tags:     tagStore,
		Profiles: profiles,
	}

	err := updater.Run(context.Background(), profile.ID)
	require.Error(t, err)
	assert.Empty(t, profiles.interestEmbeddings)
}

func TestInterestUpdater_MissingProfileIsNoOp(t *testing.T) {
	profileID := uuid.New()
	profiles := newMockProfileStore()
	profiles.setErr = store.ErrNotFound
	tagStore := newMockTagStore()
	tagStore.profileTags[profileID] = []*models.Tag{
		{ID: 1, EnglishName: "golang"},
	}
	updater := &InterestUpdater{
		Embedder: &mockEmbedder{vector: pgvector.NewVector([]float32{1})},
		Tags:     tagStore,
		Profiles: profiles,
	}

	err := updater.Run(context.Background(), profileID)
	require.NoError(t, err)
}
