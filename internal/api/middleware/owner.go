package middleware

import (
	"context"
	"net/http"

	"github.com/relaymind/knowledgecore/internal/api"
)

type contextKey string

const OwnerIDKey contextKey = "owner_id"

// RequireOwner extracts the caller identity from the X-Owner-ID header and
// stores it in the request context. Requests without one are rejected;
// every document operation is tenant scoped.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.Header.Get("X-Owner-ID")
		if ownerID == "" {
			api.Error(w, http.StatusBadRequest, "missing X-Owner-ID header")
			return
		}

		ctx := context.WithValue(r.Context(), OwnerIDKey, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetOwnerID returns the owner ID from context.
func GetOwnerID(ctx context.Context) string {
	ownerID, _ := ctx.Value(OwnerIDKey).(string)
	return ownerID
}
