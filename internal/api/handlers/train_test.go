package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/relaymind/knowledgecore/internal/api"
	"github.com/relaymind/knowledgecore/internal/domain"
)

type MockWebsiteTrainer struct {
	mock.Mock
}

func (m *MockWebsiteTrainer) CrawlURL(ctx context.Context, containerID, ownerID, url string) (int, error) {
	args := m.Called(ctx, containerID, ownerID, url)
	return args.Int(0), args.Error(1)
}

type MockVideoTrainer struct {
	mock.Mock
}

func (m *MockVideoTrainer) ProcessVideo(ctx context.Context, containerID, ownerID, url string) (int, error) {
	args := m.Called(ctx, containerID, ownerID, url)
	return args.Int(0), args.Error(1)
}

func TestTrainHandler_Website_Success(t *testing.T) {
	crawler := new(MockWebsiteTrainer)
	video := new(MockVideoTrainer)
	handler := NewTrainHandler(crawler, video)

	crawler.On("CrawlURL", mock.Anything, "c-1", "owner-1", "https://example.com/docs").
		Return(4, nil)

	req := jsonRequest(http.MethodPost, "/containers/c-1/train/website", `{"url":"https://example.com/docs"}`, map[string]string{"containerID": "c-1"})
	w := httptest.NewRecorder()

	handler.Website(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp api.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(4), data["chunks"])

	crawler.AssertExpectations(t)
	video.AssertNotCalled(t, "ProcessVideo")
}

func TestTrainHandler_YouTube_Success(t *testing.T) {
	crawler := new(MockWebsiteTrainer)
	video := new(MockVideoTrainer)
	handler := NewTrainHandler(crawler, video)

	video.On("ProcessVideo", mock.Anything, "c-1", "owner-1", "https://youtube.com/watch?v=abc").
		Return(2, nil)

	req := jsonRequest(http.MethodPost, "/containers/c-1/train/youtube", `{"url":"https://youtube.com/watch?v=abc"}`, map[string]string{"containerID": "c-1"})
	w := httptest.NewRecorder()

	handler.YouTube(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	video.AssertExpectations(t)
}

func TestTrainHandler_Website_RelativeURL(t *testing.T) {
	crawler := new(MockWebsiteTrainer)
	handler := NewTrainHandler(crawler, new(MockVideoTrainer))

	req := jsonRequest(http.MethodPost, "/containers/c-1/train/website", `{"url":"/docs/page"}`, map[string]string{"containerID": "c-1"})
	w := httptest.NewRecorder()

	handler.Website(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	crawler.AssertNotCalled(t, "CrawlURL")
}

func TestTrainHandler_Website_MissingURL(t *testing.T) {
	crawler := new(MockWebsiteTrainer)
	handler := NewTrainHandler(crawler, new(MockVideoTrainer))

	req := jsonRequest(http.MethodPost, "/containers/c-1/train/website", `{}`, map[string]string{"containerID": "c-1"})
	w := httptest.NewRecorder()

	handler.Website(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	crawler.AssertNotCalled(t, "CrawlURL")
}

func TestTrainHandler_Website_ExtractionFailed(t *testing.T) {
	crawler := new(MockWebsiteTrainer)
	handler := NewTrainHandler(crawler, new(MockVideoTrainer))

	crawler.On("CrawlURL", mock.Anything, "c-1", "owner-1", "https://example.com").
		Return(0, domain.NewExtractionFailedError("no usable content extracted", nil))

	req := jsonRequest(http.MethodPost, "/containers/c-1/train/website", `{"url":"https://example.com"}`, map[string]string{"containerID": "c-1"})
	w := httptest.NewRecorder()

	handler.Website(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	crawler.AssertExpectations(t)
}
