package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceKey(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		name       string
		configured string
		sent       string
		want       int
	}{
		{"should accept the configured key", "secret", "secret", http.StatusNoContent},
		{"should reject a wrong key", "secret", "guess", http.StatusUnauthorized},
		{"should reject a missing key", "secret", "", http.StatusUnauthorized},
		{"should reject everything when unconfigured", "", "", http.StatusUnauthorized},
		{"should reject any key when unconfigured", "", "secret", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/internal/notifications", nil)
			if tc.sent != "" {
				req.Header.Set(ServiceKeyHeader, tc.sent)
			}
			rec := httptest.NewRecorder()
			ServiceKey(tc.configured)(ok).ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
