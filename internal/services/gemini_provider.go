package services

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"minbar/internal/store"
)

// GeminiProvider implements EmbeddingProvider using the Google Gemini API.
// It is the second leg of the fallback chain behind OpenAI.
type GeminiProvider struct {
	client         *genai.Client
	embeddingModel string
	dim            int
}

// NewGeminiProvider creates a new Gemini embedding provider.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string, dimension int) (*GeminiProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		log.Warn("Gemini API key not provided. Gemini provider will be disabled.")
		return &GeminiProvider{client: nil, dim: dimension}, nil
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dimension)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	log.Infof("Gemini provider initialized with model %s (dimension %d)", modelName, dimension)

	return &GeminiProvider{
		client:         client,
		embeddingModel: modelName,
		dim:            dimension,
	}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) ModelName() string { return p.embeddingModel }

func (p *GeminiProvider) Dimension() int { return p.dim }

func (p *GeminiProvider) Status() store.ProviderStatus {
	if p.client == nil {
		return store.ProviderStatusDisabled
	}
	return store.ProviderStatusActive
}

func (p *GeminiProvider) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	if p.client == nil {
		return pgvector.Vector{}, fmt.Errorf("Gemini provider is not initialized (missing API key)")
	}
	if text == "" {
		log.Warn("GenerateEmbedding called with empty text for Gemini")
		return pgvector.NewVector(make([]float32, p.dim)), nil
	}

	em := p.client.EmbeddingModel(p.embeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("Gemini API error generating embedding: %w", err)
	}

	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return pgvector.Vector{}, fmt.Errorf("Gemini API returned no embedding data")
	}
	if len(res.Embedding.Values) != p.dim {
		return pgvector.Vector{}, fmt.Errorf("Gemini API returned unexpected embedding dimension: got %d, want %d",
			len(res.Embedding.Values), p.dim)
	}

	return pgvector.NewVector(res.Embedding.Values), nil
}

var _ EmbeddingProvider = (*GeminiProvider)(nil)
