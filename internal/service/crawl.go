package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/relaymind/knowledgecore/internal/chunker"
	"github.com/relaymind/knowledgecore/internal/domain"
	"github.com/relaymind/knowledgecore/internal/gemini"
	"github.com/relaymind/knowledgecore/internal/telemetry"
)

const (
	// htmlLimit caps how much raw HTML is sent to the model.
	htmlLimit = 30000

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// minExtractedLength is the shortest extraction accepted as meaningful.
	minExtractedLength = 50
)

// ContentGenerator produces text from a prompt. Satisfied by gemini.Client.
type ContentGenerator interface {
	GenerateText(ctx context.Context, prompt string, opts gemini.GenerateOptions) (string, error)
}

// CrawlerService ingests websites: fetch, extract the main content with a
// model, then chunk and store like any other source.
type CrawlerService struct {
	httpClient *http.Client
	generator  ContentGenerator
	docs       *DocumentService
	chunkCfg   ChunkConfig
}

// NewCrawlerService creates a CrawlerService. httpClient may be nil to use
// the default client.
func NewCrawlerService(httpClient *http.Client, generator ContentGenerator, docs *DocumentService, chunkCfg ChunkConfig) *CrawlerService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if chunkCfg.MaxLength <= 0 {
		chunkCfg = DefaultChunkConfig()
	}
	return &CrawlerService{
		httpClient: httpClient,
		generator:  generator,
		docs:       docs,
		chunkCfg:   chunkCfg,
	}
}

// CrawlURL fetches url, extracts its main content and stores the chunks in
// the container. It returns how many chunks were stored.
func (s *CrawlerService) CrawlURL(ctx context.Context, containerID, ownerID, url string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "CrawlerService.CrawlURL", telemetry.SpanAttributes{
		ContainerID: containerID,
		OwnerID:     ownerID,
		Operation:   "crawl",
	})
	defer span.End()

	log.Printf("crawler: crawling %s for container %s", url, containerID)

	html, err := s.fetch(ctx, url)
	if err != nil {
		span.SetError(err)
		return 0, err
	}
	if len(html) > htmlLimit {
		html = html[:htmlLimit]
	}

	prompt := fmt.Sprintf(`I am providing you with the raw HTML of a webpage.
Your task is to extract ONLY the main article content, meaningful headings, and useful text.
Ignore navigation menus, footers, advertisements, and sidebar clutter.
Format the output in clean Markdown.
URL: %s
HTML Content:
%s`, url, html)

	extracted, err := s.generator.GenerateText(ctx, prompt, gemini.GenerateOptions{
		SystemInstruction: gemini.ScraperSystemPrompt,
	})
	if err != nil {
		span.SetError(err)
		return 0, domain.NewExtractionFailedError("failed to analyze website content", err)
	}
	if len(strings.TrimSpace(extracted)) < minExtractedLength {
		err := domain.NewExtractionFailedError("failed to extract meaningful content from the website", nil)
		span.SetError(err)
		return 0, err
	}

	chunks := chunker.Chunk(extracted, s.chunkCfg.MaxLength, s.chunkCfg.Overlap)
	for _, chunk := range chunks {
		meta := chunk.Metadata
		meta.Source = domain.SourceWebsite
		meta.URL = url
		if err := s.docs.Store(ctx, containerID, ownerID, chunk.Text, meta); err != nil {
			span.SetError(err)
			return 0, err
		}
	}

	log.Printf("crawler: stored %s as %d chunks", url, len(chunks))
	return len(chunks), nil
}

func (s *CrawlerService) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("failed to fetch url: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}
