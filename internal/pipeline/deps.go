// Package pipeline contains the asynchronous enrichment stages content moves
// through after creation: moderation, tagging, embedding, and the interest
// embedding updater, sequenced by the coordinator.
package pipeline

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"minbar/internal/models"
	"minbar/internal/services"
)

// ModerationDetector scores text across the moderation categories.
type ModerationDetector interface {
	Detect(ctx context.Context, text string) (*models.ModerationScores, error)
}

// TagGenerator proposes bilingual tags for content or translates raw tag
// names.
type TagGenerator interface {
	GenerateTags(ctx context.Context, title, content string, existingTags []string) (*services.TaggingResult, error)
	TranslateTags(ctx context.Context, rawTags []string) ([]services.TagProposal, error)
}

// EmbeddingGenerator produces a vector for arbitrary text.
type EmbeddingGenerator interface {
	GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
}

// ProfileRanker ranks candidate profiles by cosine distance from a query
// vector, full list, no threshold.
type ProfileRanker interface {
	RankProfiles(ctx context.Context, query pgvector.Vector) ([]models.MatchResult, error)
}
