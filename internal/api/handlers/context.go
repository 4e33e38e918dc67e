package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/relaymind/knowledgecore/internal/api"
	"github.com/relaymind/knowledgecore/internal/api/middleware"
	"github.com/relaymind/knowledgecore/internal/domain"
)

type ContextService interface {
	GetContextForQuery(ctx context.Context, containerID, ownerID, query string) domain.QueryContext
}

type ContextHandler struct {
	svc ContextService
}

func NewContextHandler(svc ContextService) *ContextHandler {
	return &ContextHandler{svc: svc}
}

type ContextRequest struct {
	Query string `json:"query"`
}

// Query assembles the grounding context for a chat turn. An empty result is
// a normal response, not an error.
func (h *ContextHandler) Query(w http.ResponseWriter, r *http.Request) {
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

	var req ContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	result := h.svc.GetContextForQuery(r.Context(), containerID, ownerID, req.Query)

	api.Success(w, http.StatusOK, result)
}
