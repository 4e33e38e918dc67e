// Package openai adapts the OpenAI embeddings API to the embedding.Provider
// interface. One adapter instance wraps one API key so the embedding client
// can rotate keys independently.
package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/relaymind/knowledgecore/internal/embedding"
)

// DefaultEmbeddingModel is the OpenAI model used when none is configured.
const DefaultEmbeddingModel = openai.SmallEmbedding3

// ErrEmptyText is returned when text is empty.
var ErrEmptyText = errors.New("text cannot be empty")

// EmbeddingProvider implements embedding.Provider over a single API key.
type EmbeddingProvider struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	name       string
}

// NewEmbeddingProvider creates a provider for one API key. dimensions is
// passed through to models that support shortened output vectors.
func NewEmbeddingProvider(apiKey string, model openai.EmbeddingModel, dimensions int, name string) *EmbeddingProvider {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &EmbeddingProvider{
		client:     openai.NewClient(apiKey),
		model:      model,
		dimensions: dimensions,
		name:       name,
	}
}

// NewEmbeddingProviders builds one provider per API key, in key order.
func NewEmbeddingProviders(apiKeys []string, model openai.EmbeddingModel, dimensions int) []embedding.Provider {
	providers := make([]embedding.Provider, 0, len(apiKeys))
	for i, key := range apiKeys {
		providers = append(providers,
			NewEmbeddingProvider(key, model, dimensions, fmt.Sprintf("openai-key-%d", i)))
	}
	return providers
}

// Name identifies this key slot in logs.
func (p *EmbeddingProvider) Name() string { return p.name }

// CreateEmbedding calls the OpenAI embeddings endpoint. API errors carry
// their HTTP status in the returned error text so the caller can classify
// rate limits and transient failures.
func (p *EmbeddingProvider) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: p.model,
	}
	if p.dimensions > 0 && p.model != openai.AdaEmbeddingV2 {
		req.Dimensions = p.dimensions
	}

	resp, err := p.client.CreateEmbeddings(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("embedding request failed with status %d: %w", apiErr.HTTPStatusCode, err)
		}
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}
	return resp.Data[0].Embedding, nil
}
