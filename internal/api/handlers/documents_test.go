package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/relaymind/knowledgecore/internal/api"
	"github.com/relaymind/knowledgecore/internal/domain"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) GetAll(ctx context.Context, containerID, ownerID string) ([]*domain.Document, error) {
	args := m.Called(ctx, containerID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentService) DeleteOne(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *MockDocumentService) DeleteAll(ctx context.Context, containerID, ownerID string) (int64, error) {
	args := m.Called(ctx, containerID, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func newTestDocument() *domain.Document {
	return &domain.Document{
		ID:          "d-123",
		ContainerID: "c-1",
		OwnerID:     "owner-1",
		Content:     "chunk text",
		Metadata: domain.ChunkMetadata{
			ChunkIndex:     1,
			TotalChunks:    3,
			Filename:       "notes.txt",
			Source:         domain.SourceUpload,
			ContentVersion: 2,
		},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestDocumentHandler_List_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("GetAll", mock.Anything, "c-1", "owner-1").
		Return([]*domain.Document{newTestDocument()}, nil)

	req := newRequest(http.MethodGet, "/containers/c-1/documents", nil, map[string]string{"containerID": "c-1"})
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp api.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), data["count"])

	items, ok := data["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "d-123", item["id"])
	assert.Equal(t, "notes.txt", item["filename"])
	assert.Equal(t, "upload", item["source"])
	assert.Equal(t, "2026-01-02T03:04:05Z", item["created_at"])

	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_List_Empty(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("GetAll", mock.Anything, "c-1", "owner-1").
		Return([]*domain.Document{}, nil)

	req := newRequest(http.MethodGet, "/containers/c-1/documents", nil, map[string]string{"containerID": "c-1"})
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp api.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(0), data["count"])
}

func TestDocumentHandler_List_MissingOwner(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/containers/c-1/documents", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "GetAll")
}

func TestDocumentHandler_Delete_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("DeleteOne", mock.Anything, "d-123", "owner-1").Return(nil)

	req := newRequest(http.MethodDelete, "/documents/d-123", nil, map[string]string{"id": "d-123"})
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Delete_NotFound(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("DeleteOne", mock.Anything, "d-999", "owner-1").
		Return(domain.ErrDocumentNotFound)

	req := newRequest(http.MethodDelete, "/documents/d-999", nil, map[string]string{"id": "d-999"})
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Clear_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("DeleteAll", mock.Anything, "c-1", "owner-1").Return(int64(7), nil)

	req := newRequest(http.MethodDelete, "/containers/c-1/documents", nil, map[string]string{"containerID": "c-1"})
	w := httptest.NewRecorder()

	handler.Clear(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp api.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(7), data["deleted"])

	mockSvc.AssertExpectations(t)
}
