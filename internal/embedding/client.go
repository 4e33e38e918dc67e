// Package embedding generates text embeddings across a ring of provider
// instances, one per API key. Rate-limited calls rotate to the next key,
// transient server errors retry on the same key, and once the retry budget
// is spent the caller receives a zero-filled vector so ingestion and search
// degrade to lexical-only behavior instead of failing.
package embedding

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

const (
	maxRetries    = 3
	rateLimitWait = 2 * time.Second
	transientWait = 3 * time.Second
)

// Provider generates an embedding vector for a single text. One Provider
// instance wraps one API key.
type Provider interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
	Name() string
}

// Client fans embedding requests over a set of providers with key rotation.
type Client struct {
	providers  []Provider
	dimensions int

	rateLimitWait time.Duration
	transientWait time.Duration

	mu     sync.Mutex
	cursor int
}

// NewClient creates a Client over the given providers. dimensions is the
// length of the zero vector returned when every attempt fails.
func NewClient(providers []Provider, dimensions int) *Client {
	return &Client{
		providers:     providers,
		dimensions:    dimensions,
		rateLimitWait: rateLimitWait,
		transientWait: transientWait,
	}
}

// Dimensions reports the vector length this client produces.
func (c *Client) Dimensions() int { return c.dimensions }

// KeyCount reports how many provider instances (API keys) are configured.
func (c *Client) KeyCount() int { return len(c.providers) }

// EmbedText returns an embedding for text. It never returns an error: after
// exhausting retries and key rotations it logs the failure and returns a
// zero-filled vector of the configured dimension.
func (c *Client) EmbedText(ctx context.Context, text string) []float32 {
	if len(c.providers) == 0 || strings.TrimSpace(text) == "" {
		return c.zeroVector()
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		provider := c.current()
		vec, err := provider.CreateEmbedding(ctx, text)
		if err == nil {
			return vec
		}
		lastErr = err

		switch {
		case isRateLimited(err):
			log.Printf("embedding: %s rate limited, rotating key (attempt %d/%d): %v",
				provider.Name(), attempt+1, maxRetries+1, err)
			c.rotate()
			if !sleepCtx(ctx, c.rateLimitWait) {
				return c.zeroVector()
			}
		case isTransient(err):
			log.Printf("embedding: %s transient failure, retrying (attempt %d/%d): %v",
				provider.Name(), attempt+1, maxRetries+1, err)
			if !sleepCtx(ctx, c.transientWait) {
				return c.zeroVector()
			}
		default:
			log.Printf("embedding: %s non-retryable failure, returning zero vector: %v",
				provider.Name(), err)
			return c.zeroVector()
		}
	}

	log.Printf("embedding: all retries exhausted, returning zero vector: %v", lastErr)
	return c.zeroVector()
}

// EmbedBatch embeds each text in order. Entries that fail individually come
// back as zero vectors, so the result always has len(texts) elements.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = c.EmbedText(ctx, t)
	}
	return vectors
}

func (c *Client) current() Provider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.providers[c.cursor]
}

func (c *Client) rotate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = (c.cursor + 1) % len(c.providers)
}

func (c *Client) zeroVector() []float32 {
	return make([]float32, c.dimensions)
}

// isRateLimited matches quota exhaustion. Providers annotate the HTTP status
// into the wrapped error text, so substring checks cover both SDKs.
func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "Too Many Requests") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// isTransient matches server-side failures worth retrying on the same key.
func isTransient(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "500") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "Service Unavailable") ||
		strings.Contains(msg, "Internal Server Error")
}

// sleepCtx waits for d or until ctx is done. It reports whether the full
// wait elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
