package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/relaymind/knowledgecore/internal/api"
	"github.com/relaymind/knowledgecore/internal/api/middleware"
	"github.com/relaymind/knowledgecore/internal/service"
)

type IngestService interface {
	ProcessUpload(ctx context.Context, input service.UploadInput) (*service.UploadResult, error)
}

type IngestHandler struct {
	svc IngestService
}

func NewIngestHandler(svc IngestService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

type UploadResponse struct {
	Chunks         int    `json:"chunks"`
	ContentHash    string `json:"content_hash"`
	ContentVersion int    `json:"content_version"`
}

// Upload ingests one multipart file into the container's knowledge base.
// The pipeline runs synchronously; progress events stream to the sink while
// the request is in flight.
func (h *IngestHandler) Upload(w http.ResponseWriter, r *http.Request) {
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

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read file")
		return
	}

	fileType := header.Header.Get("Content-Type")
	if fileType == "application/octet-stream" {
		// Let the pipeline derive the type from the filename extension.
		fileType = ""
	}

	result, err := h.svc.ProcessUpload(r.Context(), service.UploadInput{
		ContainerID: containerID,
		OwnerID:     ownerID,
		FileData:    data,
		FileType:    fileType,
		FileName:    header.Filename,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, UploadResponse{
		Chunks:         result.Chunks,
		ContentHash:    result.ContentHash,
		ContentVersion: result.ContentVersion,
	})
}
