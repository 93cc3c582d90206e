// Package tasks defines the Asynq task types and payloads that move content
// through the enrichment pipeline, plus the outbound notification tasks.
package tasks

import (
	"github.com/google/uuid"

	"minbar/internal/models"
)

const (
	// TypeProcessContent is the pipeline entry point for newly created or
	// edited content. Its handler runs moderation and, on acceptance, fans
	// out to the tagging and embedding tasks.
	TypeProcessContent = "pipeline:process"
	// TypeTagContent generates and links topical tags for accepted content.
	TypeTagContent = "pipeline:tag"
	// TypeEmbedContent computes and persists the content embedding and, for
	// job postings, triggers the candidate match fan-out.
	TypeEmbedContent = "pipeline:embed"
	// TypeSweepUnprocessed re-enqueues content that never finished
	// moderation, e.g. after a dropped message.
	TypeSweepUnprocessed = "pipeline:sweep"

	// TypeUpdateInterests recomputes a profile's aggregate interest
	// embedding from its tags.
	TypeUpdateInterests = "interests:update"
	// TypeSeedInterests turns free-text onboarding interests into bilingual
	// tags linked to the profile.
	TypeSeedInterests = "interests:seed"

	// TypeNotifyContentDeleted carries a moderation takedown to the author.
	TypeNotifyContentDeleted = "notify:content_deleted"
	// TypeNotifyJobMatch carries a ranked candidate list for a job posting.
	TypeNotifyJobMatch = "notify:job_match"
)

// Queue names. Each stage pulls from its own FIFO queue; stages run
// concurrently with respect to each other.
const (
	QueuePipeline  = "pipeline"
	QueueTagging   = "tagging"
	QueueEmbedding = "embeddings"
	QueueInterests = "interests"
	QueueNotify    = "notify"
)

// PipelineMessage travels between pipeline stages. It is transient and never
// persisted; durable state lives in the content store.
type PipelineMessage struct {
	ContentID   uuid.UUID          `json:"content_id"`
	AuthorID    uuid.UUID          `json:"author_id"`
	ContentType models.ContentType `json:"content_type"`
	Title       string             `json:"title"`
	Content     string             `json:"content"`
}

// IsJobPosting reports whether the message refers to a job posting, the only
// variant that triggers match fan-out after embedding.
func (m PipelineMessage) IsJobPosting() bool {
	return m.ContentType == models.ContentTypeJobPosting
}

// InterestsMessage asks for a profile's interest embedding to be recomputed.
type InterestsMessage struct {
	ProfileID uuid.UUID `json:"profile_id"`
}

// SeedInterestsMessage carries raw onboarding interest names for a profile.
type SeedInterestsMessage struct {
	ProfileID uuid.UUID `json:"profile_id"`
	RawTags   []string  `json:"raw_tags"`
}

// ContentDeletedNotice is the payload of a moderation takedown notification.
type ContentDeletedNotice struct {
	ContentType models.ContentType `json:"content_type"`
	ContentID   uuid.UUID          `json:"content_id"`
	AuthorID    uuid.UUID          `json:"author_id"`
	ReportID    uuid.UUID          `json:"report_id"`
	Reason      string             `json:"reason"`
}

// JobMatchNotice is the payload of a job match fan-out. CandidateProfileIDs
// is ordered by ascending cosine distance.
type JobMatchNotice struct {
	JobPostingID        uuid.UUID   `json:"job_posting_id"`
	CandidateProfileIDs []uuid.UUID `json:"candidate_profile_ids"`
}
