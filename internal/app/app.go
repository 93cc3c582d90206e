// Package app wires configuration, stores, external providers, and the
// pipeline stages into one initialized application.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"minbar/internal/config"
	"minbar/internal/notify"
	"minbar/internal/pipeline"
	"minbar/internal/services"
	"minbar/internal/store"
	"minbar/internal/store/primary"
)

type App struct {
	Config *config.Config

	JobClient store.JobClient
	Notifier  notify.Notifier

	ContentStore    store.ContentStore
	ModerationStore store.ModerationStore
	TagStore        store.TagStore
	ProfileStore    store.ProfileStore
	MatchStore      store.MatchStore

	EmbeddingService  store.EmbeddingService
	ModerationService *services.ModerationService
	TaggingService    *services.TaggingService
	MatchingService   *services.MatchingService

	primaryStore  *primary.StoreImpl
	redisCache    *redis.Client
	queueNotifier *notify.QueueNotifier
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	app := &App{Config: cfg}

	if err := app.initPrimaryStore(ctx); err != nil {
		return nil, err
	}
	if err := app.initQueueClients(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initEmbeddingService(ctx); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initLLMServices(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	app.initMatchingService()

	log.Info("Application initialization complete")
	return app, nil
}

// Migrate creates the schema, including the pgvector extension and the
// vector columns sized to the configured embedding dimension.
func (a *App) Migrate(ctx context.Context) error {
	return a.primaryStore.Migrate(ctx, a.Config.Embedding.Dimension)
}

// PipelineHandlers assembles the asynq handlers for the worker process.
func (a *App) PipelineHandlers() *pipeline.Handlers {
	moderation := &pipeline.ModerationStage{
		Detector:   a.ModerationService,
		Contents:   a.ContentStore,
		Reports:    a.ModerationStore,
		Notifier:   a.Notifier,
		Thresholds: a.Config.Moderation.Thresholds,
	}
	return &pipeline.Handlers{
		Coordinator: &pipeline.Coordinator{Moderation: moderation, Jobs: a.JobClient},
		Tagging: &pipeline.TaggingStage{
			Tagger:   a.TaggingService,
			Contents: a.ContentStore,
			Tags:     a.TagStore,
			Jobs:     a.JobClient,
		},
		Embedding: &pipeline.EmbeddingStage{
			Embedder: a.EmbeddingService,
			Contents: a.ContentStore,
			Matcher:  a.MatchingService,
			Notifier: a.Notifier,
		},
		Interests: &pipeline.InterestUpdater{
			Embedder: a.EmbeddingService,
			Tags:     a.TagStore,
			Profiles: a.ProfileStore,
		},
		Sweeper: &pipeline.Sweeper{Contents: a.ContentStore, Jobs: a.JobClient},
	}
}

func (a *App) Close() {
	if a.JobClient != nil {
		if err := a.JobClient.Close(); err != nil {
			log.WithError(err).Warn("Error closing job client")
		}
	}
	if a.queueNotifier != nil {
		if err := a.queueNotifier.Close(); err != nil {
			log.WithError(err).Warn("Error closing notifier")
		}
	}
	if a.redisCache != nil {
		if err := a.redisCache.Close(); err != nil {
			log.WithError(err).Warn("Error closing redis cache")
		}
	}
	if a.primaryStore != nil {
		a.primaryStore.Close()
	}
}

func (a *App) initPrimaryStore(ctx context.Context) error {
	ps, err := primary.NewStore(ctx, a.Config.Database.DSN)
	if err != nil {
		return fmt.Errorf("init primary store: %w", err)
	}
	a.primaryStore = ps
	a.ContentStore = ps
	a.ModerationStore = ps
	a.TagStore = ps
	a.ProfileStore = ps
	a.MatchStore = ps
	return nil
}

func (a *App) initQueueClients() error {
	opt := asynq.RedisClientOpt{
		Addr:     a.Config.Redis.Address,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	}
	a.JobClient = store.NewAsynqJobClient(opt)
	a.queueNotifier = notify.NewQueueNotifier(opt)
	a.Notifier = a.queueNotifier
	return nil
}

func (a *App) initEmbeddingService(ctx context.Context) error {
	cfg := a.Config
	var providers []services.EmbeddingProvider

	if cfg.Embedding.OpenaiApiKey != "" {
		openaiProvider, err := services.NewOpenAIProvider(
			cfg.Embedding.OpenaiApiKey,
			cfg.Embedding.Model,
			cfg.Embedding.Dimension,
		)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize OpenAI embedding provider")
		} else {
			log.WithField("model", cfg.Embedding.Model).Info("Initialized OpenAI embedding provider")
			providers = append(providers, openaiProvider)
		}
	}
	if cfg.Embedding.GoogleApiKey != "" && cfg.Embedding.GeminiModelName != "" {
		geminiProvider, err := services.NewGeminiProvider(
			ctx,
			cfg.Embedding.GoogleApiKey,
			cfg.Embedding.GeminiModelName,
			cfg.Embedding.Dimension,
		)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Gemini embedding provider")
		} else {
			log.WithField("model", cfg.Embedding.GeminiModelName).Info("Initialized Gemini embedding provider")
			providers = append(providers, geminiProvider)
		}
	}
	if len(providers) == 0 {
		return fmt.Errorf("no embedding providers configured or initialized successfully")
	}

	fallback, err := services.NewFallbackEmbeddingService(providers, a.retryStrategy())
	if err != nil {
		return fmt.Errorf("init embedding service: %w", err)
	}

	a.redisCache = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ttl := time.Duration(cfg.Embedding.CacheTTLMinutes) * time.Minute
	a.EmbeddingService = services.NewCachedEmbeddingService(fallback, a.redisCache, ttl)
	return nil
}

func (a *App) initLLMServices() error {
	cfg := a.Config
	if cfg.LLM.ApiKey == "" {
		return fmt.Errorf("llm.api_key is required for moderation and tagging")
	}
	clientCfg := openai.DefaultConfig(cfg.LLM.ApiKey)
	if cfg.LLM.BaseURL != "" {
		clientCfg.BaseURL = cfg.LLM.BaseURL
	}
	client := openai.NewClientWithConfig(clientCfg)

	a.ModerationService = services.NewModerationService(client, cfg.Moderation.Model, a.retryStrategy())
	a.TaggingService = services.NewTaggingService(
		client,
		cfg.Tagging.Model,
		cfg.Tagging.MinTags,
		cfg.Tagging.MaxTags,
		a.retryStrategy(),
	)
	return nil
}

func (a *App) initMatchingService() {
	a.MatchingService = services.NewMatchingService(
		a.MatchStore,
		a.EmbeddingService,
		a.Config.Matching.SearchDistanceThreshold,
		a.Config.Matching.SearchLimit,
		a.Config.Matching.SuggestionLimit,
	)
}

func (a *App) retryStrategy() *services.SimpleRetryStrategy {
	return &services.SimpleRetryStrategy{
		MaxAttempts: a.Config.Resilience.MaxAttempts,
		BaseDelayMs: a.Config.Resilience.BaseDelayMs,
	}
}

func (a *App) cleanupPartialInit() {
	a.Close()
}
