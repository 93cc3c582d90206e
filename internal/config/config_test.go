package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	c := &Config{}
	c.Database.DSN = "postgres://localhost/minbar"
	c.Redis.Address = "127.0.0.1:6379"
	c.Embedding.Dimension = 1024
	c.Moderation.Thresholds = Thresholds{
		Toxicity:       0.8,
		SevereToxicity: 0.5,
		Obscene:        0.8,
		Threat:         0.6,
		Insult:         0.8,
		IdentityAttack: 0.6,
		SexualExplicit: 0.8,
	}
	c.Tagging.MinTags = 3
	c.Tagging.MaxTags = 6
	c.Matching.SearchDistanceThreshold = 0.6
	c.Matching.SearchLimit = 25
	c.Matching.SuggestionLimit = 50
	c.Resilience.MaxAttempts = 3
	c.Worker.Concurrency = 10
	c.Worker.Queues = map[string]int{
		"pipeline":   6,
		"tagging":    3,
		"embeddings": 3,
		"interests":  1,
		"notify":     1,
	}
	return c
}

func TestValidate_AcceptsCompleteConfig(t *testing.T) {
	require.NoError(t, Validate(validConfig()))
}

func TestValidate_RequiresDSN(t *testing.T) {
	c := validConfig()
	c.Database.DSN = ""
	assert.Error(t, Validate(c))
}

func TestValidate_RejectsOutOfRangeThreshold(t *testing.T) {
	c := validConfig()
	c.Moderation.Thresholds.Threat = 1.5
	assert.Error(t, Validate(c))
}

func TestValidate_RejectsInvalidTagBounds(t *testing.T) {
	c := validConfig()
	c.Tagging.MinTags = 6
	c.Tagging.MaxTags = 3
	assert.Error(t, Validate(c))
}

func TestValidate_RequiresGoogleKeyWithGeminiModel(t *testing.T) {
	c := validConfig()
	c.Embedding.GeminiModelName = "gemini-embedding-001"
	assert.Error(t, Validate(c))

	c.Embedding.GoogleApiKey = "key"
	assert.NoError(t, Validate(c))
}

func TestValidate_RejectsNonPositiveQueuePriority(t *testing.T) {
	c := validConfig()
	c.Worker.Queues["tagging"] = 0
	assert.Error(t, Validate(c))
}

func TestValidate_RequiresAllStageQueues(t *testing.T) {
	c := validConfig()
	delete(c.Worker.Queues, "notify")
	assert.Error(t, Validate(c))
}

func TestValidate_RejectsZeroDimension(t *testing.T) {
	c := validConfig()
	c.Embedding.Dimension = 0
	assert.Error(t, Validate(c))
}
