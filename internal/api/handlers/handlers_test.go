package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	"github.com/relaymind/knowledgecore/internal/api/middleware"
)

// newRequest builds a request carrying the owner id and chi URL params the
// handlers read.
func newRequest(method, target string, body io.Reader, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := context.WithValue(req.Context(), middleware.OwnerIDKey, "owner-1")
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

func jsonRequest(method, target, body string, params map[string]string) *http.Request {
	req := newRequest(method, target, bytes.NewReader([]byte(body)), params)
	req.Header.Set("Content-Type", "application/json")
	return req
}
