package openai

import (
	"context"
	"fmt"
	"os"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"codeguardian/internal/domain"
)

// Embedder wraps an OpenAI-compatible embeddings API as an Embedder.
// The dimension is fixed per model for the lifetime of the client.
type Embedder struct {
	client    *goopenai.Client
	model     string
	dimension int
	timeout   time.Duration
}

// Config configures the OpenAI embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Dimension int
	Timeout   time.Duration
}

// NewEmbedder creates an embeddings client from the configuration. A
// missing API key is a ModelUnavailable condition: the backend cannot be
// reached without it.
func NewEmbedder(cfg Config) (*Embedder, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s: %w", cfg.APIKeyEnv, domain.ErrModelUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = string(goopenai.SmallEmbedding3)
	}
	if cfg.Dimension == 0 {
		cfg.Dimension = 1536
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	clientCfg := goopenai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Embedder{
		client:    goopenai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		timeout:   cfg.Timeout,
	}, nil
}

func (e *Embedder) Name() string { return "openai" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns an embedding vector for the given text.
func (e *Embedder) Embed(text string) ([]float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	resp, err := e.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Model: goopenai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %v: %w", err, domain.ErrModelUnavailable)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings returned no data: %w", domain.ErrModelUnavailable)
	}
	raw := resp.Data[0].Embedding
	vec := make([]float64, len(raw))
	for i, v := range raw {
		vec[i] = float64(v)
	}
	if len(vec) != e.dimension {
		return nil, fmt.Errorf("model %s returned dimension %d, expected %d: %w", e.model, len(vec), e.dimension, domain.ErrInvalidArgument)
	}
	return vec, nil
}
