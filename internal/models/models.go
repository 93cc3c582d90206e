package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// ContentType discriminates the two content variants the pipeline handles.
type ContentType string

const (
	ContentTypePost       ContentType = "post"
	ContentTypeJobPosting ContentType = "job_posting"
)

// Language is the detected language of a content item, as reported by the
// tagging model.
type Language string

const (
	LanguageEnglish Language = "English"
	LanguageArabic  Language = "Arabic"
	LanguageMixed   Language = "Mixed"
	LanguageOther   Language = "Other"
)

// Content is a post or a job posting moving through the enrichment pipeline.
// Embedding stays nil until the embedding stage has run.
type Content struct {
	ID          uuid.UUID        `db:"id"`
	ContentType ContentType      `db:"content_type"`
	AuthorID    uuid.UUID        `db:"author_id"`
	Title       string           `db:"title"`
	Body        string           `db:"body"`
	Language    *Language        `db:"language"`
	IsProcessed bool             `db:"is_processed"`
	IsTagged    bool             `db:"is_tagged"`
	Embedding   *pgvector.Vector `db:"embedding"`
	CreatedAt   time.Time        `db:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at"`
}

// ReporterKind distinguishes automated moderation reports from ones filed by
// users of the platform.
type ReporterKind string

const (
	ReporterKindAutomated ReporterKind = "automated"
	ReporterKindUser      ReporterKind = "user"
)

// ModerationScores holds the per-category probabilities returned by the
// moderation model, each in [0,1] rounded to five decimals.
type ModerationScores struct {
	Toxicity       float64 `json:"toxicity"`
	SevereToxicity float64 `json:"severe_toxicity"`
	Obscene        float64 `json:"obscene"`
	Threat         float64 `json:"threat"`
	Insult         float64 `json:"insult"`
	IdentityAttack float64 `json:"identity_attack"`
	SexualExplicit float64 `json:"sexual_explicit"`
}

// ModerationReport records one moderation run over a content item. Immutable
// after creation except for IsResolved.
type ModerationReport struct {
	ID           uuid.UUID   `db:"id"`
	ContentType  ContentType `db:"content_type"`
	ContentID    uuid.UUID   `db:"content_id"`
	AuthorID     uuid.UUID   `db:"author_id"`
	Scores       ModerationScores
	IsNegative   bool         `db:"is_negative"`
	Reason       string       `db:"reason"`
	IsResolved   bool         `db:"is_resolved"`
	ReporterKind ReporterKind `db:"reporter_kind"`
	CreatedAt    time.Time    `db:"created_at"`
}

// Tag is a bilingual topical label shared by content and user interests.
// Deduplicated by exact match on either name variant; never deleted by the
// pipeline.
type Tag struct {
	ID          int64     `db:"id"`
	EnglishName string    `db:"english_name"`
	ArabicName  string    `db:"arabic_name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Profile is the slice of a user profile the pipeline touches: its identity
// and the embedding aggregated from its interest tags.
type Profile struct {
	ID                uuid.UUID        `db:"id"`
	DisplayName       string           `db:"display_name"`
	InterestEmbedding *pgvector.Vector `db:"interest_embedding"`
	CreatedAt         time.Time        `db:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at"`
}

// MatchResult is one candidate from a similarity query, ordered by ascending
// cosine distance. Distance is in [0,2]; ties come back in whatever order
// Postgres produces them.
type MatchResult struct {
	ID       uuid.UUID
	Distance float64
}
