package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireOwner_SetsOwnerInContext(t *testing.T) {
	var gotOwner string
	handler := RequireOwner(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOwner = GetOwnerID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/containers/c-1/documents", nil)
	req.Header.Set("X-Owner-ID", "owner-42")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "owner-42", gotOwner)
}

func TestRequireOwner_MissingHeader(t *testing.T) {
	called := false
	handler := RequireOwner(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/containers/c-1/documents", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
	assert.Contains(t, w.Body.String(), "X-Owner-ID")
}

func TestGetOwnerID_EmptyContext(t *testing.T) {
	assert.Equal(t, "", GetOwnerID(context.Background()))
}
