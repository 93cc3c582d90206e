package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Thresholds holds the per-category moderation cut-offs. A score meeting or
// exceeding any single threshold flags the whole item; there is no combined
// score.
type Thresholds struct {
	Toxicity       float64 `mapstructure:"toxicity"`
	SevereToxicity float64 `mapstructure:"severe_toxicity"`
	Obscene        float64 `mapstructure:"obscene"`
	Threat         float64 `mapstructure:"threat"`
	Insult         float64 `mapstructure:"insult"`
	IdentityAttack float64 `mapstructure:"identity_attack"`
	SexualExplicit float64 `mapstructure:"sexual_explicit"`
}

type Config struct {
	Database struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	// LLM is the OpenAI-compatible chat completion endpoint used by the
	// moderation and tagging services.
	LLM struct {
		ApiKey  string `mapstructure:"api_key"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"llm"`

	Moderation struct {
		Model      string     `mapstructure:"model"`
		Thresholds Thresholds `mapstructure:"thresholds"`
	} `mapstructure:"moderation"`

	Tagging struct {
		Model string `mapstructure:"model"`
		// MinTags/MaxTags bound the number of tags accepted from the model.
		MinTags int `mapstructure:"min_tags"`
		MaxTags int `mapstructure:"max_tags"`
	} `mapstructure:"tagging"`

	Embedding struct {
		OpenaiApiKey    string `mapstructure:"openai_api_key"`
		Model           string `mapstructure:"model"`
		GoogleApiKey    string `mapstructure:"google_api_key"`
		GeminiModelName string `mapstructure:"gemini_model_name"`
		Dimension       int    `mapstructure:"dimension"`
		CacheTTLMinutes int    `mapstructure:"cache_ttl_minutes"`
	} `mapstructure:"embedding"`

	Matching struct {
		// SearchDistanceThreshold caps cosine distance for semantic search
		// reads. The job match fan-out applies no threshold.
		SearchDistanceThreshold float64 `mapstructure:"search_distance_threshold"`
		SearchLimit             int     `mapstructure:"search_limit"`
		SuggestionLimit         int     `mapstructure:"suggestion_limit"`
	} `mapstructure:"matching"`

	Resilience struct {
		MaxAttempts int   `mapstructure:"max_attempts"`
		BaseDelayMs int64 `mapstructure:"base_delay_ms"`
	} `mapstructure:"resilience"`

	Worker struct {
		Concurrency int            `mapstructure:"concurrency"`
		Queues      map[string]int `mapstructure:"queues"`
	} `mapstructure:"worker"`

	Scheduler struct {
		// SweepSpec is a cron expression for the unprocessed-content sweep.
		SweepSpec string `mapstructure:"sweep_spec"`
	} `mapstructure:"scheduler"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.BindEnv("embedding.openai_api_key", "OPENAI_API_KEY")
	viper.BindEnv("embedding.google_api_key", "GEMINI_API_KEY")
	viper.BindEnv("database.dsn", "DATABASE_URL")
	viper.BindEnv("llm.api_key", "GROQ_API_KEY")
	viper.BindEnv("redis.address", "REDIS_ADDR")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine, env vars and defaults carry it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := Validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("redis.address", "127.0.0.1:6379")

	viper.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")

	viper.SetDefault("moderation.model", "openai/gpt-oss-120b")
	viper.SetDefault("moderation.thresholds.toxicity", 0.8)
	viper.SetDefault("moderation.thresholds.severe_toxicity", 0.5)
	viper.SetDefault("moderation.thresholds.obscene", 0.8)
	viper.SetDefault("moderation.thresholds.threat", 0.6)
	viper.SetDefault("moderation.thresholds.insult", 0.8)
	viper.SetDefault("moderation.thresholds.identity_attack", 0.6)
	viper.SetDefault("moderation.thresholds.sexual_explicit", 0.8)

	viper.SetDefault("tagging.model", "openai/gpt-oss-120b")
	viper.SetDefault("tagging.min_tags", 3)
	viper.SetDefault("tagging.max_tags", 6)

	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.dimension", 1024)
	viper.SetDefault("embedding.cache_ttl_minutes", 60)

	viper.SetDefault("matching.search_distance_threshold", 1.0)
	viper.SetDefault("matching.search_limit", 25)
	viper.SetDefault("matching.suggestion_limit", 50)

	viper.SetDefault("resilience.max_attempts", 3)
	viper.SetDefault("resilience.base_delay_ms", 200)

	viper.SetDefault("worker.concurrency", 10)
	viper.SetDefault("worker.queues", map[string]int{
		"pipeline":   6,
		"tagging":    2,
		"embeddings": 2,
		"interests":  1,
		"notify":     1,
	})

	viper.SetDefault("scheduler.sweep_spec", "@every 10m")
}
