package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Middleware provides HTTP middleware for bearer-token validation.
type Middleware struct {
	Config Config
}

// NewMiddleware constructs a bearer middleware.
func NewMiddleware(cfg Config) Middleware {
	return Middleware{Config: cfg}
}

// Wrap rejects requests without a valid bearer token and stores the claims on the
// request context.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.parseRequest(r)
		switch {
		case errors.Is(err, ErrMissingToken):
			deny(w, http.StatusUnauthorized, "Access token required")
			return
		case err != nil:
			deny(w, http.StatusForbidden, "Invalid or expired token")
			return
		}
		ctx := WithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m Middleware) parseRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMissingToken
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return nil, ErrInvalidToken
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	return Parse(token, m.Config)
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
