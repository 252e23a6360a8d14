package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/vedran77/syncspace/internal/domain"
	"github.com/vedran77/syncspace/internal/identity"
)

type contextKey string

const IdentityKey contextKey = "identity"

// ServiceKeyHeader carries the shared secret of internal callers.
const ServiceKeyHeader = "X-Service-Key"

func Auth(extractor *identity.Extractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractor.FromRequest(r)
			if err != nil {
				unauthorized(w, "Missing or invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ServiceKey guards endpoints called by other subsystems. With an empty key
// every request is rejected, so the endpoints are effectively off.
func ServiceKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(ServiceKeyHeader)
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				unauthorized(w, "Missing or invalid service key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"` + message + `"}}`))
}

// GetIdentity extracts the caller identity from request context
func GetIdentity(ctx context.Context) domain.Identity {
	id, _ := ctx.Value(IdentityKey).(domain.Identity)
	return id
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) int64 {
	return GetIdentity(ctx).UserID
}
