package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relaymind/knowledgecore/internal/domain"
)

func searchResult(content, filename string) domain.SearchResult {
	return domain.SearchResult{
		Document: domain.Document{
			Content:  content,
			Metadata: domain.ChunkMetadata{Filename: filename},
		},
		Similarity: 0.9,
	}
}

func TestGetContextForQuery_JoinsAndDedupesSources(t *testing.T) {
	repo := &mockRepo{hybridResults: []domain.SearchResult{
		searchResult("first passage", "a.txt"),
		searchResult("second passage", "b.txt"),
		searchResult("third passage", "a.txt"),
	}}
	docs := NewDocumentService(repo, &fakeEmbedder{dims: 2}, 0.3)
	assembler := NewContextAssembler(docs, 3)

	qc := assembler.GetContextForQuery(context.Background(), "c1", "u1", "what happened")

	assert.Equal(t, "first passage\n\n---\n\nsecond passage\n\n---\n\nthird passage", qc.Text)
	assert.Equal(t, []string{"a.txt", "b.txt"}, qc.Sources)
}

func TestGetContextForQuery_SkipsUnnamedSources(t *testing.T) {
	repo := &mockRepo{hybridResults: []domain.SearchResult{
		searchResult("from a website", ""),
		searchResult("from a file", "doc.pdf"),
	}}
	docs := NewDocumentService(repo, &fakeEmbedder{dims: 2}, 0.3)
	assembler := NewContextAssembler(docs, 3)

	qc := assembler.GetContextForQuery(context.Background(), "c1", "u1", "query")

	assert.Contains(t, qc.Text, "from a website")
	assert.Equal(t, []string{"doc.pdf"}, qc.Sources)
}

func TestGetContextForQuery_EmptyOnSearchFailure(t *testing.T) {
	repo := &mockRepo{hybridErr: errors.New("db down")}
	docs := NewDocumentService(repo, &fakeEmbedder{dims: 2}, 0.3)
	assembler := NewContextAssembler(docs, 3)

	qc := assembler.GetContextForQuery(context.Background(), "c1", "u1", "query")

	assert.Empty(t, qc.Text)
	assert.Empty(t, qc.Sources)
}

func TestGetContextForQuery_NoResults(t *testing.T) {
	docs := NewDocumentService(&mockRepo{}, &fakeEmbedder{dims: 2}, 0.3)
	assembler := NewContextAssembler(docs, 3)

	qc := assembler.GetContextForQuery(context.Background(), "c1", "u1", "query")

	assert.Equal(t, "", qc.Text)
	assert.NotNil(t, qc.Sources)
	assert.Empty(t, qc.Sources)
}
