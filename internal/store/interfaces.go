package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/pgvector/pgvector-go"

	"minbar/internal/models"
	"minbar/internal/tasks"
)

// --- Job Client ---

// JobClient enqueues pipeline work onto the per-stage queues.
type JobClient interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	EnqueueProcessContent(ctx context.Context, msg tasks.PipelineMessage) error
	EnqueueTagContent(ctx context.Context, msg tasks.PipelineMessage) error
	EnqueueEmbedContent(ctx context.Context, msg tasks.PipelineMessage) error
	EnqueueInterestsUpdate(ctx context.Context, profileID uuid.UUID) error
	EnqueueSeedInterests(ctx context.Context, msg tasks.SeedInterestsMessage) error
	Close() error
}

// --- Content Store ---

type ContentStore interface {
	CreateContent(ctx context.Context, content *models.Content) error
	GetContent(ctx context.Context, id uuid.UUID) (*models.Content, error)
	DeleteContent(ctx context.Context, id uuid.UUID) error
	// MarkProcessed is the moderation stage's write: is_processed only.
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	// SetTagged is the tagging stage's write: is_tagged plus detected language.
	SetTagged(ctx context.Context, id uuid.UUID, language models.Language) error
	// SetEmbedding is the embedding stage's write: the vector only.
	SetEmbedding(ctx context.Context, id uuid.UUID, embedding pgvector.Vector) error
	ListUnprocessed(ctx context.Context, limit int) ([]*models.Content, error)

	Ping(ctx context.Context) error
}

// --- Moderation Store ---

type ModerationStore interface {
	CreateReport(ctx context.Context, report *models.ModerationReport) error
	GetReport(ctx context.Context, id uuid.UUID) (*models.ModerationReport, error)
	ListReports(ctx context.Context, limit, offset int) ([]*models.ModerationReport, error)
}

// --- Tag Store ---

type TagStore interface {
	// GetOrCreateTags deduplicates by exact match on either name variant and
	// inserts only the genuinely new tags, returning the full set with ids.
	GetOrCreateTags(ctx context.Context, proposed []models.Tag) ([]*models.Tag, error)
	AddTagsToContent(ctx context.Context, contentID uuid.UUID, tagIDs []int64) error
	AddTagsToProfile(ctx context.Context, profileID uuid.UUID, tagIDs []int64) error
	GetContentTags(ctx context.Context, contentID uuid.UUID) ([]*models.Tag, error)
	GetProfileTags(ctx context.Context, profileID uuid.UUID) ([]*models.Tag, error)
}

// --- Profile Store ---

type ProfileStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	SetInterestEmbedding(ctx context.Context, id uuid.UUID, embedding pgvector.Vector) error
}

// --- Similarity matching ---

// MatchQuery narrows a similarity search. A nil MaxDistance means no
// distance cut-off; Limit <= 0 means no limit.
type MatchQuery struct {
	MaxDistance *float64
	Limit       int
}

// MatchStore runs cosine-distance similarity queries against stored vectors.
// Read-only; results are ordered by ascending distance.
type MatchStore interface {
	MatchProfiles(ctx context.Context, query pgvector.Vector, q MatchQuery) ([]models.MatchResult, error)
	MatchContent(ctx context.Context, query pgvector.Vector, contentType models.ContentType, q MatchQuery) ([]models.MatchResult, error)
	// MatchContentExcluding is MatchContent minus one id, for "similar items"
	// reads where the query vector belongs to a stored item.
	MatchContentExcluding(ctx context.Context, query pgvector.Vector, contentType models.ContentType, exclude uuid.UUID, q MatchQuery) ([]models.MatchResult, error)
}

// --- Embedding Service ---

type ProviderStatus int

const (
	ProviderStatusActive ProviderStatus = iota
	ProviderStatusDisabled
)

type EmbeddingService interface {
	GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
	Dimension() int
	ModelName() string
	Name() string
	Status() ProviderStatus
}
