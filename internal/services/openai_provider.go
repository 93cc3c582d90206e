package services

import (
	"context"
	"fmt"
	"os"

	"github.com/pgvector/pgvector-go"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"minbar/internal/store"
)

// OpenAIProvider implements EmbeddingProvider using the OpenAI API.
type OpenAIProvider struct {
	client *openai.Client
	model  openai.EmbeddingModel
	dim    int
}

// NewOpenAIProvider creates a new OpenAI embedding provider. The requested
// dimension is passed through to the API so all providers in a fallback
// chain produce vectors of the same size.
func NewOpenAIProvider(apiKey, modelID string, dimension int) (*OpenAIProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		log.Warn("OpenAI API key not provided. OpenAI provider will be disabled.")
		return &OpenAIProvider{client: nil, dim: dimension}, nil
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dimension)
	}

	client := openai.NewClient(apiKey)
	log.Infof("OpenAI provider initialized with model %s (dimension %d)", modelID, dimension)

	return &OpenAIProvider{
		client: client,
		model:  openai.EmbeddingModel(modelID),
		dim:    dimension,
	}, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) ModelName() string { return string(p.model) }

func (p *OpenAIProvider) Dimension() int { return p.dim }

func (p *OpenAIProvider) Status() store.ProviderStatus {
	if p.client == nil {
		return store.ProviderStatusDisabled
	}
	return store.ProviderStatusActive
}

func (p *OpenAIProvider) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	if p.client == nil {
		return pgvector.Vector{}, fmt.Errorf("OpenAI provider is not initialized (missing API key)")
	}
	if text == "" {
		log.Warn("GenerateEmbedding called with empty text for OpenAI")
		return pgvector.NewVector(make([]float32, p.dim)), nil
	}

	req := openai.EmbeddingRequestStrings{
		Input:      []string{text},
		Model:      p.model,
		Dimensions: p.dim,
	}

	resp, err := p.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("OpenAI API error generating embedding: %w", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return pgvector.Vector{}, fmt.Errorf("OpenAI API returned no embedding data")
	}
	if len(resp.Data[0].Embedding) != p.dim {
		return pgvector.Vector{}, fmt.Errorf("OpenAI API returned unexpected embedding dimension: got %d, want %d",
			len(resp.Data[0].Embedding), p.dim)
	}

	return pgvector.NewVector(resp.Data[0].Embedding), nil
}

var _ EmbeddingProvider = (*OpenAIProvider)(nil)
