// Package identity turns a bearer token into a domain.Identity.
//
// Long-lived connections cannot replay the Authorization header on every
// frame, so for requests under one of the configured hub prefixes the token
// may also be passed as the access_token query parameter.
package identity

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vedran77/syncspace/internal/domain"
)

const (
	QueryParam       = "access_token"
	legacyQueryParam = "token"
)

type Extractor struct {
	secret      []byte
	hubPrefixes []string
	parser      *jwt.Parser
	logger      *slog.Logger
}

func NewExtractor(secret string, hubPrefixes []string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		secret:      []byte(secret),
		hubPrefixes: hubPrefixes,
		parser:      jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
		logger:      logger.With("component", "identity"),
	}
}

// Extract validates tokenStr and returns the identity it names.
func (e *Extractor) Extract(tokenStr string) (domain.Identity, error) {
	if tokenStr == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing token", domain.ErrUnauthenticated)
	}

	token, err := e.parser.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return e.secret, nil
	})
	if err != nil || !token.Valid {
		e.logger.Debug("token rejected", "error", err)
		return domain.Identity{}, fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, jwt.ErrTokenInvalidClaims)
	}

	sub := subject(claims)
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return domain.Identity{}, fmt.Errorf("%w: invalid subject %q", domain.ErrUnauthenticated, sub)
	}

	return domain.Identity{UserID: userID, DisplayName: displayName(claims, sub)}, nil
}

// FromRequest reads the token from the Authorization header, falling back to
// the query string only for hub paths.
func (e *Extractor) FromRequest(r *http.Request) (domain.Identity, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return domain.Identity{}, fmt.Errorf("%w: malformed authorization header", domain.ErrUnauthenticated)
		}
		return e.Extract(tokenStr)
	}

	if !e.isHubPath(r.URL.Path) {
		return domain.Identity{}, fmt.Errorf("%w: missing token", domain.ErrUnauthenticated)
	}

	q := r.URL.Query()
	tokenStr := q.Get(QueryParam)
	if tokenStr == "" {
		tokenStr = q.Get(legacyQueryParam)
	}
	return e.Extract(tokenStr)
}

func (e *Extractor) isHubPath(path string) bool {
	for _, prefix := range e.hubPrefixes {
		if path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}

// subject returns the user id claim. Tokens from the account service carry it
// as nameid; sub may be a string or a JSON number.
func subject(claims jwt.MapClaims) string {
	for _, key := range []string{"sub", "nameid"} {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			if v == math.Trunc(v) {
				return strconv.FormatInt(int64(v), 10)
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func displayName(claims jwt.MapClaims, sub string) string {
	for _, key := range []string{"name", "unique_name"} {
		if v, ok := claims[key].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return "user:" + sub
}
