package auth

import (
	"crypto/subtle"
	"net/http"
)

// AdminKeyHeader carries the shared admin secret.
const AdminKeyHeader = "x-admin-key"

// AdminMiddleware guards the admin endpoints with a shared key. An empty key disables them.
type AdminMiddleware struct {
	key []byte
}

// NewAdminMiddleware constructs AdminMiddleware.
func NewAdminMiddleware(key string) AdminMiddleware {
	return AdminMiddleware{key: []byte(key)}
}

// Wrap attaches the admin key check to an http.Handler.
func (m AdminMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(m.key) == 0 {
			deny(w, http.StatusForbidden, "Admin access disabled")
			return
		}
		got := []byte(r.Header.Get(AdminKeyHeader))
		if subtle.ConstantTimeCompare(got, m.key) != 1 {
			deny(w, http.StatusUnauthorized, "Invalid admin key")
			return
		}
		next.ServeHTTP(w, r)
	})
}
