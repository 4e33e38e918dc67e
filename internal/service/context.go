package service

import (
	"context"
	"strings"

	"github.com/relaymind/knowledgecore/internal/domain"
	"github.com/relaymind/knowledgecore/internal/telemetry"
)

const contextSeparator = "\n\n---\n\n"

// ContextAssembler builds the grounding block a chat turn is answered from.
type ContextAssembler struct {
	docs  *DocumentService
	limit int
}

// NewContextAssembler creates an assembler that pulls up to limit documents
// per query.
func NewContextAssembler(docs *DocumentService, limit int) *ContextAssembler {
	if limit <= 0 {
		limit = 3
	}
	return &ContextAssembler{docs: docs, limit: limit}
}

// GetContextForQuery returns the most relevant stored content for the query
// joined into one block, plus the distinct filenames it came from. Assembly
// never fails: when search comes back empty the context is empty too.
func (a *ContextAssembler) GetContextForQuery(ctx context.Context, containerID, ownerID, query string) domain.QueryContext {
	ctx, span := telemetry.StartSpan(ctx, "ContextAssembler.GetContextForQuery", telemetry.SpanAttributes{
		ContainerID: containerID,
		OwnerID:     ownerID,
		Operation:   "context",
	})
	defer span.End()

	results := a.docs.HybridSearch(ctx, containerID, ownerID, query, a.limit)

	parts := make([]string, 0, len(results))
	sources := make([]string, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, res := range results {
		parts = append(parts, res.Content)
		filename := res.Metadata.Filename
		if filename == "" {
			continue
		}
		if _, ok := seen[filename]; ok {
			continue
		}
		seen[filename] = struct{}{}
		sources = append(sources, filename)
	}

	return domain.QueryContext{
		Text:    strings.Join(parts, contextSeparator),
		Sources: sources,
	}
}
