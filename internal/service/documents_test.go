package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaymind/knowledgecore/internal/domain"
)

// fakeEmbedder returns a fixed-dimension vector derived from text length.
type fakeEmbedder struct {
	dims  int
	calls []string
}

func (f *fakeEmbedder) EmbedText(_ context.Context, text string) []float32 {
	f.calls = append(f.calls, text)
	v := make([]float32, f.dims)
	if f.dims > 0 {
		v[0] = float32(len(text))
	}
	return v
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }

// mockRepo is an in-memory DocumentRepository with scriptable failures.
type mockRepo struct {
	docs []*domain.Document

	insertErr      error
	insertErrAfter int
	listErr        error
	deleteErr      error
	findErr        error
	maxErr         error
	searchErr      error
	hybridErr      error
	searchResults  []domain.SearchResult
	hybridResults  []domain.SearchResult
	deletedByID    []string
	deleteAllCount int64
}

func (m *mockRepo) Insert(_ context.Context, d *domain.Document, _ []float32) error {
	if m.insertErr != nil && len(m.docs) >= m.insertErrAfter {
		return m.insertErr
	}
	m.docs = append(m.docs, d)
	return nil
}

func (m *mockRepo) ListByContainer(_ context.Context, containerID, ownerID string) ([]*domain.Document, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*domain.Document
	for _, d := range m.docs {
		if d.ContainerID == containerID && d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockRepo) DeleteByID(_ context.Context, id, ownerID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i, d := range m.docs {
		if d.ID == id && d.OwnerID == ownerID {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			m.deletedByID = append(m.deletedByID, id)
			return nil
		}
	}
	return domain.ErrDocumentNotFound
}

func (m *mockRepo) DeleteByContainer(_ context.Context, containerID, ownerID string) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var kept []*domain.Document
	var removed int64
	for _, d := range m.docs {
		if d.ContainerID == containerID && d.OwnerID == ownerID {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	m.docs = kept
	m.deleteAllCount = removed
	return removed, nil
}

func (m *mockRepo) FindVersionByHash(_ context.Context, containerID, ownerID, filename, contentHash string) (int, bool, error) {
	if m.findErr != nil {
		return 0, false, m.findErr
	}
	for _, d := range m.docs {
		if d.ContainerID == containerID && d.OwnerID == ownerID &&
			d.Metadata.Filename == filename && d.Metadata.ContentHash == contentHash {
			v := d.Metadata.ContentVersion
			if v <= 0 {
				v = 1
			}
			return v, true, nil
		}
	}
	return 0, false, nil
}

func (m *mockRepo) MaxContentVersion(_ context.Context, containerID, ownerID, filename string) (int, error) {
	if m.maxErr != nil {
		return 0, m.maxErr
	}
	max := 0
	for _, d := range m.docs {
		if d.ContainerID == containerID && d.OwnerID == ownerID && d.Metadata.Filename == filename {
			if d.Metadata.ContentVersion > max {
				max = d.Metadata.ContentVersion
			}
		}
	}
	return max, nil
}

func (m *mockRepo) SearchSimilar(_ context.Context, _, _ string, _ []float32, _ float64, _ int) ([]domain.SearchResult, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchResults, nil
}

func (m *mockRepo) HybridSearch(_ context.Context, _, _, _ string, _ []float32, _ int) ([]domain.SearchResult, error) {
	if m.hybridErr != nil {
		return nil, m.hybridErr
	}
	return m.hybridResults, nil
}

func TestContentHash(t *testing.T) {
	// Surrounding whitespace never changes identity.
	assert.Equal(t, ContentHash("hello"), ContentHash("  hello \n"))
	assert.NotEqual(t, ContentHash("hello"), ContentHash("hello!"))
	assert.Len(t, ContentHash("x"), 64)
}

func TestDocumentService_Store(t *testing.T) {
	repo := &mockRepo{}
	embedder := &fakeEmbedder{dims: 4}
	svc := NewDocumentService(repo, embedder, 0.3)

	err := svc.Store(context.Background(), "c1", "u1", "some content", domain.ChunkMetadata{Filename: "f.txt"})
	require.NoError(t, err)

	require.Len(t, repo.docs, 1)
	assert.Equal(t, "some content", repo.docs[0].Content)
	assert.Equal(t, []string{"some content"}, embedder.calls)
}

func TestDocumentService_GetAllRequiresOwner(t *testing.T) {
	svc := NewDocumentService(&mockRepo{}, &fakeEmbedder{dims: 1}, 0.3)
	_, err := svc.GetAll(context.Background(), "c1", "")
	assert.ErrorIs(t, err, domain.ErrMissingOwner)
}

func TestDocumentService_DeleteOne(t *testing.T) {
	repo := &mockRepo{docs: []*domain.Document{
		{ID: "d1", ContainerID: "c1", OwnerID: "u1"},
	}}
	svc := NewDocumentService(repo, &fakeEmbedder{dims: 1}, 0.3)

	require.NoError(t, svc.DeleteOne(context.Background(), "d1", "u1"))
	assert.Empty(t, repo.docs)

	err := svc.DeleteOne(context.Background(), "d1", "u1")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentService_SearchDegradesToEmpty(t *testing.T) {
	repo := &mockRepo{searchErr: errors.New("db down"), hybridErr: errors.New("db down")}
	svc := NewDocumentService(repo, &fakeEmbedder{dims: 1}, 0.3)

	assert.Empty(t, svc.SearchBySimilarity(context.Background(), "c1", "u1", "query", 5))
	assert.Empty(t, svc.HybridSearch(context.Background(), "c1", "u1", "query", 5))
}

func TestResolveContentVersion_ExactMatchReusesVersion(t *testing.T) {
	repo := &mockRepo{docs: []*domain.Document{
		{ContainerID: "c1", OwnerID: "u1", Metadata: domain.ChunkMetadata{
			Filename: "doc.txt", ContentHash: "h1", ContentVersion: 3,
		}},
	}}
	svc := NewDocumentService(repo, &fakeEmbedder{dims: 1}, 0.3)

	v := svc.ResolveContentVersion(context.Background(), "c1", "u1", "doc.txt", "h1")
	assert.Equal(t, 3, v)
}

func TestResolveContentVersion_ChangedContentBumps(t *testing.T) {
	repo := &mockRepo{docs: []*domain.Document{
		{ContainerID: "c1", OwnerID: "u1", Metadata: domain.ChunkMetadata{
			Filename: "doc.txt", ContentHash: "h1", ContentVersion: 2,
		}},
	}}
	svc := NewDocumentService(repo, &fakeEmbedder{dims: 1}, 0.3)

	v := svc.ResolveContentVersion(context.Background(), "c1", "u1", "doc.txt", "h2")
	assert.Equal(t, 3, v)
}

func TestResolveContentVersion_FirstUpload(t *testing.T) {
	svc := NewDocumentService(&mockRepo{}, &fakeEmbedder{dims: 1}, 0.3)
	v := svc.ResolveContentVersion(context.Background(), "c1", "u1", "new.txt", "h1")
	assert.Equal(t, 1, v)
}

func TestResolveContentVersion_LookupFailureDefaultsToOne(t *testing.T) {
	repo := &mockRepo{findErr: errors.New("db down")}
	svc := NewDocumentService(repo, &fakeEmbedder{dims: 1}, 0.3)

	v := svc.ResolveContentVersion(context.Background(), "c1", "u1", "doc.txt", "h1")
	assert.Equal(t, 1, v)
}
