package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/relaymind/knowledgecore/internal/api"
	"github.com/relaymind/knowledgecore/internal/api/middleware"
	"github.com/relaymind/knowledgecore/internal/domain"
)

type DocumentService interface {
	GetAll(ctx context.Context, containerID, ownerID string) ([]*domain.Document, error)
	DeleteOne(ctx context.Context, id, ownerID string) error
	DeleteAll(ctx context.Context, containerID, ownerID string) (int64, error)
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type DocumentResponse struct {
	ID             string `json:"id"`
	ContainerID    string `json:"container_id"`
	Content        string `json:"content"`
	Filename       string `json:"filename,omitempty"`
	Source         string `json:"source,omitempty"`
	URL            string `json:"url,omitempty"`
	ChunkIndex     int    `json:"chunk_index"`
	TotalChunks    int    `json:"total_chunks"`
	ContentVersion int    `json:"content_version,omitempty"`
	CreatedAt      string `json:"created_at"`
}

type DocumentListResponse struct {
	Items []*DocumentResponse `json:"items"`
	Count int                 `json:"count"`
}

type ClearResponse struct {
	Deleted int64 `json:"deleted"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:             d.ID,
		ContainerID:    d.ContainerID,
		Content:        d.Content,
		Filename:       d.Metadata.Filename,
		Source:         string(d.Metadata.Source),
		URL:            d.Metadata.URL,
		ChunkIndex:     d.Metadata.ChunkIndex,
		TotalChunks:    d.Metadata.TotalChunks,
		ContentVersion: d.Metadata.ContentVersion,
		CreatedAt:      d.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
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

	docs, err := h.svc.GetAll(r.Context(), containerID, ownerID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*DocumentResponse, len(docs))
	for i, d := range docs {
		responses[i] = documentToResponse(d)
	}

	api.Success(w, http.StatusOK, DocumentListResponse{
		Items: responses,
		Count: len(responses),
	})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusBadRequest, "owner id is required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.DeleteOne(r.Context(), id, ownerID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}

func (h *DocumentHandler) Clear(w http.ResponseWriter, r *http.Request) {
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

	deleted, err := h.svc.DeleteAll(r.Context(), containerID, ownerID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ClearResponse{Deleted: deleted})
}
