package openai

import (
	"context"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pitchlabs/coachkb/internal/domain"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.AdaEmbeddingV2
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from ada-002
	DefaultEmbeddingDimensions = domain.EmbeddingDimensions
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Client wraps the OpenAI API client
type Client struct {
	api        EmbeddingAPI
	dimensions int
}

type OpenAIAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIAdapter(apiKey string, model openai.EmbeddingModel) *OpenAIAdapter {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &OpenAIAdapter{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings for each
// input text, preserving input order.
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, domain.NewDomainError(domain.ErrCodeEmbeddingProvider,
			"embedding count does not match input count")
	}

	// The API may return data out of order; Index is authoritative.
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, domain.NewDomainError(domain.ErrCodeEmbeddingProvider,
				"embedding index out of range")
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

type Config struct {
	APIKey              string
	EmbeddingModel      openai.EmbeddingModel
	EmbeddingDimensions int
}

// ResolveEmbeddingModel maps a configured model name to the client
// model type, falling back to the default when empty.
func ResolveEmbeddingModel(name string) openai.EmbeddingModel {
	if name == "" {
		return DefaultEmbeddingModel
	}
	return openai.EmbeddingModel(name)
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &Client{
		api:        NewOpenAIAdapter(cfg.APIKey, cfg.EmbeddingModel),
		dimensions: dimensions,
	}
}

// NewClientWithAPI creates a client over a custom EmbeddingAPI (for testing).
func NewClientWithAPI(api EmbeddingAPI, dimensions int) *Client {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &Client{api: api, dimensions: dimensions}
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, domain.NewDomainError(domain.ErrCodeEmbeddingProvider,
			"OPENAI_API_KEY environment variable not set")
	}
	return NewClient(apiKey), nil
}

// Embed generates an embedding for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for the given texts with one-to-one,
// order-preserving correspondence between inputs and outputs. A provider
// failure or a malformed vector is returned as an error; a zero vector
// is never returned in place of a failed embedding.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "no texts to embed")
	}
	for _, text := range texts {
		if text == "" {
			return nil, domain.NewDomainError(domain.ErrCodeValidation, "text cannot be empty")
		}
	}

	vectors, err := c.api.CreateEmbeddings(ctx, texts)
	if err != nil {
		if domain.HasCode(err, domain.ErrCodeEmbeddingProvider) {
			return nil, err
		}
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeEmbeddingProvider,
			"failed to create embeddings", err)
	}

	for _, v := range vectors {
		if len(v) != c.dimensions {
			return nil, domain.NewDomainError(domain.ErrCodeEmbeddingProvider,
				"embedding has wrong dimensions")
		}
	}
	return vectors, nil
}

// Dimensions returns the expected embedding vector length.
func (c *Client) Dimensions() int {
	return c.dimensions
}
