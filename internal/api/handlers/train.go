package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/relaymind/knowledgecore/internal/api"
	"github.com/relaymind/knowledgecore/internal/api/middleware"
)

type WebsiteTrainer interface {
	CrawlURL(ctx context.Context, containerID, ownerID, url string) (int, error)
}

type VideoTrainer interface {
	ProcessVideo(ctx context.Context, containerID, ownerID, url string) (int, error)
}

// TrainHandler ingests knowledge from external sources: crawled websites and
// YouTube videos.
type TrainHandler struct {
	crawler WebsiteTrainer
	video   VideoTrainer
}

func NewTrainHandler(crawler WebsiteTrainer, video VideoTrainer) *TrainHandler {
	return &TrainHandler{crawler: crawler, video: video}
}

type TrainRequest struct {
	URL string `json:"url"`
}

type TrainResponse struct {
	Chunks int `json:"chunks"`
}

func (h *TrainHandler) Website(w http.ResponseWriter, r *http.Request) {
	h.train(w, r, h.crawler.CrawlURL)
}

func (h *TrainHandler) YouTube(w http.ResponseWriter, r *http.Request) {
	h.train(w, r, h.video.ProcessVideo)
}

func (h *TrainHandler) train(w http.ResponseWriter, r *http.Request, run func(ctx context.Context, containerID, ownerID, url string) (int, error)) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusBadRequest, "owner id is required")
		return
	}

	containerID := chi.URLParam(r, "containerID")
	if containerID == "" {
		api.Error(w, http.StatusBadRequest, "container id is required")
		return
	}

	var req TrainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		api.Error(w, http.StatusBadRequest, "url is required")
		return
	}
	if parsed, err := url.Parse(req.URL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		api.Error(w, http.StatusBadRequest, "url must be absolute")
		return
	}

	chunks, err := run(r.Context(), containerID, ownerID, req.URL)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, TrainResponse{Chunks: chunks})
}
