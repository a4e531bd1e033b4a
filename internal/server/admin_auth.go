package server

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

const adminRealm = `Basic realm="pinpoint admin"`

// adminAuthMiddleware guards level management with HTTP Basic auth. The
// password is checked against a bcrypt hash; an empty hash disables the
// admin API entirely.
func adminAuthMiddleware(passwordHash string) func(http.Handler) http.Handler {
	hash := []byte(passwordHash)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(hash) == 0 {
				writeError(w, http.StatusForbidden, "admin api disabled")
				return
			}

			_, password, ok := r.BasicAuth()
			if !ok || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
				w.Header().Set("WWW-Authenticate", adminRealm)
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
