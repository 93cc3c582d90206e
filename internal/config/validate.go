package config

import (
	"errors"
	"fmt"

	"minbar/internal/tasks"
)

// Validate checks the loaded configuration for values the pipeline cannot
// run without.
func Validate(c *Config) error {
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Redis.Address == "" {
		return errors.New("redis.address is required")
	}

	if c.Embedding.Dimension <= 0 {
		return errors.New("embedding.dimension must be a positive integer")
	}
	if c.Embedding.GeminiModelName != "" && c.Embedding.GoogleApiKey == "" {
		return errors.New("embedding.google_api_key is required when embedding.gemini_model_name is set")
	}

	for name, t := range map[string]float64{
		"toxicity":        c.Moderation.Thresholds.Toxicity,
		"severe_toxicity": c.Moderation.Thresholds.SevereToxicity,
		"obscene":         c.Moderation.Thresholds.Obscene,
		"threat":          c.Moderation.Thresholds.Threat,
		"insult":          c.Moderation.Thresholds.Insult,
		"identity_attack": c.Moderation.Thresholds.IdentityAttack,
		"sexual_explicit": c.Moderation.Thresholds.SexualExplicit,
	} {
		if t < 0 || t > 1 {
			return fmt.Errorf("moderation.thresholds.%s must be within [0,1], got %v", name, t)
		}
	}

	if c.Tagging.MinTags <= 0 || c.Tagging.MaxTags < c.Tagging.MinTags {
		return errors.New("tagging.min_tags and tagging.max_tags must satisfy 0 < min <= max")
	}

	if c.Matching.SearchDistanceThreshold < 0 || c.Matching.SearchDistanceThreshold > 2 {
		return errors.New("matching.search_distance_threshold must be within [0,2]")
	}
	if c.Matching.SearchLimit <= 0 || c.Matching.SuggestionLimit <= 0 {
		return errors.New("matching limits must be positive")
	}

	if c.Worker.Concurrency <= 0 {
		return errors.New("worker.concurrency must be a positive integer")
	}
	if len(c.Worker.Queues) == 0 {
		return errors.New("worker.queues must define at least one queue")
	}
	for name, priority := range c.Worker.Queues {
		if name == "" {
			return errors.New("worker.queues contains an empty queue name")
		}
		if priority <= 0 {
			return fmt.Errorf("worker.queues[%s] priority must be positive", name)
		}
	}
	// A missing stage queue strands its tasks in Redis with nothing pulling
	// from them, so all stage queues must be listed.
	for _, required := range []string{
		tasks.QueuePipeline,
		tasks.QueueTagging,
		tasks.QueueEmbedding,
		tasks.QueueInterests,
		tasks.QueueNotify,
	} {
		if _, ok := c.Worker.Queues[required]; !ok {
			return fmt.Errorf("worker.queues is missing the %q queue", required)
		}
	}

	if c.Resilience.MaxAttempts <= 0 {
		return errors.New("resilience.max_attempts must be positive")
	}
	return nil
}
