// Package service contains the document lifecycle: ingestion, retrieval,
// search and context assembly.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"strings"

	"github.com/relaymind/knowledgecore/internal/domain"
	"github.com/relaymind/knowledgecore/internal/telemetry"
)

// DocumentRepository is the persistence interface the services depend on.
type DocumentRepository interface {
	Insert(ctx context.Context, d *domain.Document, embedding []float32) error
	ListByContainer(ctx context.Context, containerID, ownerID string) ([]*domain.Document, error)
	DeleteByID(ctx context.Context, id, ownerID string) error
	DeleteByContainer(ctx context.Context, containerID, ownerID string) (int64, error)
	FindVersionByHash(ctx context.Context, containerID, ownerID, filename, contentHash string) (int, bool, error)
	MaxContentVersion(ctx context.Context, containerID, ownerID, filename string) (int, error)
	SearchSimilar(ctx context.Context, containerID, ownerID string, embedding []float32, threshold float64, limit int) ([]domain.SearchResult, error)
	HybridSearch(ctx context.Context, containerID, ownerID, query string, embedding []float32, limit int) ([]domain.SearchResult, error)
}

// Embedder produces a vector for a text. Implementations never fail; a
// degraded call yields a zero vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) []float32
	Dimensions() int
}

// DocumentService exposes stored-document operations scoped to a container
// and owner.
type DocumentService struct {
	repo           DocumentRepository
	embedder       Embedder
	matchThreshold float64
}

// NewDocumentService creates a DocumentService. matchThreshold gates
// similarity search results.
func NewDocumentService(repo DocumentRepository, embedder Embedder, matchThreshold float64) *DocumentService {
	return &DocumentService{repo: repo, embedder: embedder, matchThreshold: matchThreshold}
}

// ContentHash returns the SHA-256 hex digest of the trimmed text. Identical
// content always hashes identically regardless of surrounding whitespace.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}

// Store embeds content and persists it as one document.
func (s *DocumentService) Store(ctx context.Context, containerID, ownerID, content string, metadata domain.ChunkMetadata) error {
	embedding := s.embedder.EmbedText(ctx, content)
	doc := &domain.Document{
		ContainerID: containerID,
		OwnerID:     ownerID,
		Content:     content,
		Metadata:    metadata,
	}
	return s.repo.Insert(ctx, doc, embedding)
}

// GetAll returns every document in the container, newest first.
func (s *DocumentService) GetAll(ctx context.Context, containerID, ownerID string) ([]*domain.Document, error) {
	if ownerID == "" {
		return nil, domain.ErrMissingOwner
	}
	return s.repo.ListByContainer(ctx, containerID, ownerID)
}

// DeleteOne removes a single document by ID.
func (s *DocumentService) DeleteOne(ctx context.Context, id, ownerID string) error {
	if ownerID == "" {
		return domain.ErrMissingOwner
	}
	return s.repo.DeleteByID(ctx, id, ownerID)
}

// DeleteAll clears the container's documents and reports how many were
// removed.
func (s *DocumentService) DeleteAll(ctx context.Context, containerID, ownerID string) (int64, error) {
	if ownerID == "" {
		return 0, domain.ErrMissingOwner
	}
	return s.repo.DeleteByContainer(ctx, containerID, ownerID)
}

// SearchBySimilarity embeds the query and returns documents above the match
// threshold. Search never fails outward: any error yields an empty result.
func (s *DocumentService) SearchBySimilarity(ctx context.Context, containerID, ownerID, query string, limit int) []domain.SearchResult {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.SearchBySimilarity", telemetry.SpanAttributes{
		ContainerID: containerID,
		OwnerID:     ownerID,
		Operation:   "similarity_search",
	})
	defer span.End()

	embedding := s.embedder.EmbedText(ctx, query)
	results, err := s.repo.SearchSimilar(ctx, containerID, ownerID, embedding, s.matchThreshold, limit)
	if err != nil {
		log.Printf("documents: similarity search failed: %v", err)
		span.SetError(err)
		return []domain.SearchResult{}
	}
	return results
}

// HybridSearch embeds the query and runs the combined keyword and vector
// query. Like SearchBySimilarity it degrades to an empty result on error.
func (s *DocumentService) HybridSearch(ctx context.Context, containerID, ownerID, query string, limit int) []domain.SearchResult {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.HybridSearch", telemetry.SpanAttributes{
		ContainerID: containerID,
		OwnerID:     ownerID,
		Operation:   "hybrid_search",
	})
	defer span.End()

	embedding := s.embedder.EmbedText(ctx, query)
	results, err := s.repo.HybridSearch(ctx, containerID, ownerID, query, embedding, limit)
	if err != nil {
		log.Printf("documents: hybrid search failed: %v", err)
		span.SetError(err)
		return []domain.SearchResult{}
	}
	return results
}

// ResolveContentVersion returns the version to record for an upload. The
// same filename with the same hash reuses its existing version; changed
// content gets the highest seen version plus one. A lookup failure degrades
// to version 1 so ingestion is never blocked by versioning.
func (s *DocumentService) ResolveContentVersion(ctx context.Context, containerID, ownerID, filename, contentHash string) int {
	version, found, err := s.repo.FindVersionByHash(ctx, containerID, ownerID, filename, contentHash)
	if err != nil {
		log.Printf("documents: version lookup failed, defaulting to 1: %v", err)
		return 1
	}
	if found {
		return version
	}

	// Changed content for a known filename: bump past the highest version.
	// Concurrent uploads of the same file can race this read and both claim
	// the same version; the last write simply coexists with the first.
	maxVersion, err := s.repo.MaxContentVersion(ctx, containerID, ownerID, filename)
	if err != nil {
		log.Printf("documents: max version lookup failed, defaulting to 1: %v", err)
		return 1
	}
	return maxVersion + 1
}
