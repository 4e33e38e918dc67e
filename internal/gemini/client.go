// Package gemini wraps the Gemini API for content generation, file
// transcription and embeddings. A Client holds one SDK client per API key
// and rotates to the next key when a call is rate limited.
package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/relaymind/knowledgecore/internal/embedding"
)

const (
	// DefaultGenerationModel is used for extraction and transcription.
	DefaultGenerationModel = "gemini-2.5-flash"
	// DefaultEmbeddingModel produces 768-dimension vectors.
	DefaultEmbeddingModel = "text-embedding-004"

	defaultTemperature = 0.7
)

// ErrNoAPIKeys is returned when a Client is constructed without keys.
var ErrNoAPIKeys = errors.New("no gemini api keys configured")

// Client generates content against the Gemini API with key rotation.
type Client struct {
	clients []*genai.Client
	model   string

	mu     sync.Mutex
	cursor int
}

// New builds a Client with one SDK client per API key.
func New(ctx context.Context, apiKeys []string, model string) (*Client, error) {
	if len(apiKeys) == 0 {
		return nil, ErrNoAPIKeys
	}
	if model == "" {
		model = DefaultGenerationModel
	}

	clients := make([]*genai.Client, 0, len(apiKeys))
	for _, key := range apiKeys {
		c, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		clients = append(clients, c)
	}
	log.Printf("gemini: initialized with %d api keys", len(clients))
	return &Client{clients: clients, model: model}, nil
}

// GenerateOptions tunes a single generation call. A nil Temperature uses
// the default.
type GenerateOptions struct {
	SystemInstruction string
	Temperature       *float32
}

// GenerateText runs a plain text prompt and returns the model's text. A rate
// limited call switches to the next key and retries, at most once per
// configured key.
func (c *Client) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	return c.generate(ctx, contents, opts)
}

func (c *Client) generate(ctx context.Context, contents []*genai.Content, opts GenerateOptions) (string, error) {
	temperature := opts.Temperature
	if temperature == nil {
		temperature = genai.Ptr(float32(defaultTemperature))
	}
	config := &genai.GenerateContentConfig{
		Temperature: temperature,
	}
	if opts.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(opts.SystemInstruction, genai.RoleUser)
	}

	var lastErr error
	for attempt := 0; attempt < len(c.clients); attempt++ {
		resp, err := c.current().Models.GenerateContent(ctx, c.model, contents, config)
		if err == nil {
			return resp.Text(), nil
		}
		lastErr = err
		if !isRateLimited(err) {
			return "", fmt.Errorf("failed to generate content: %w", err)
		}
		log.Printf("gemini: key %d rate limited, switching", c.rotate()+1)
	}
	return "", fmt.Errorf("failed to generate content: %w", lastErr)
}

// AnalyzeFile uploads data to the Files API and asks the model about it.
// Used for PDF transcription.
func (c *Client) AnalyzeFile(ctx context.Context, data []byte, mimeType, displayName, prompt string) (string, error) {
	file, err := c.upload(ctx, data, mimeType, displayName)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{FileData: &genai.FileData{FileURI: file.URI, MIMEType: mimeType}},
			{Text: prompt},
		},
	}}
	return c.generate(ctx, contents, GenerateOptions{Temperature: genai.Ptr(float32(0))})
}

// TranscribeAudio uploads audio and returns a verbatim transcript.
func (c *Client) TranscribeAudio(ctx context.Context, data []byte, mimeType, displayName string) (string, error) {
	file, err := c.upload(ctx, data, mimeType, displayName)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{FileData: &genai.FileData{FileURI: file.URI, MIMEType: mimeType}},
			{Text: audioTranscriptPrompt},
		},
	}}
	text, err := c.generate(ctx, contents, GenerateOptions{SystemInstruction: audioSystemPrompt})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty transcript returned for audio file")
	}
	return text, nil
}

// TranscribeVideo asks the model to transcribe a public video URL. The URL
// is passed by reference, not uploaded.
func (c *Client) TranscribeVideo(ctx context.Context, url string) (string, error) {
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{FileData: &genai.FileData{FileURI: url, MIMEType: "video/*"}},
			{Text: videoTranscriptPrompt},
		},
	}}
	text, err := c.generate(ctx, contents, GenerateOptions{SystemInstruction: videoSystemPrompt})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty transcript returned for video")
	}
	return text, nil
}

func (c *Client) upload(ctx context.Context, data []byte, mimeType, displayName string) (*genai.File, error) {
	file, err := c.current().Files.Upload(ctx, bytes.NewReader(data), &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, fmt.Errorf("files api upload failed: %w", err)
	}
	return file, nil
}

func (c *Client) current() *genai.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clients[c.cursor]
}

// rotate advances the key cursor and returns the new index.
func (c *Client) rotate() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = (c.cursor + 1) % len(c.clients)
	return c.cursor
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "Too Many Requests") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// EmbeddingProvider implements embedding.Provider over one API key.
type EmbeddingProvider struct {
	client     *genai.Client
	model      string
	dimensions int32
	name       string
}

// NewEmbeddingProviders builds one embedding provider per API key.
func NewEmbeddingProviders(ctx context.Context, apiKeys []string, model string, dimensions int) ([]embedding.Provider, error) {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	providers := make([]embedding.Provider, 0, len(apiKeys))
	for i, key := range apiKeys {
		c, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		providers = append(providers, &EmbeddingProvider{
			client:     c,
			model:      model,
			dimensions: int32(dimensions),
			name:       fmt.Sprintf("gemini-key-%d", i),
		})
	}
	return providers, nil
}

// Name identifies this key slot in logs.
func (p *EmbeddingProvider) Name() string { return p.name }

// CreateEmbedding embeds text with the configured output dimensionality.
func (p *EmbeddingProvider) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}

	var config *genai.EmbedContentConfig
	if p.dimensions > 0 {
		dim := p.dimensions
		config = &genai.EmbedContentConfig{OutputDimensionality: &dim}
	}

	resp, err := p.client.Models.EmbedContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("empty embedding response")
	}
	return resp.Embeddings[0].Values, nil
}
