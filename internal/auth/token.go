package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// TokenUser is the fixed pseudo-username package indexes expect when
// authenticating with an API token instead of a real account.
const TokenUser = "__token__"

// Middleware returns an HTTP middleware that validates the upload credential.
// Two forms are accepted: "Authorization: Bearer <token>", and HTTP basic auth
// with the __token__ pseudo-user and the token as password (the form upload
// clients send).
func Middleware(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); ok {
			if user == TokenUser && equal(pass, token) {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		header := r.Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || !equal(parts[1], token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func equal(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// Mask hides all but the first few characters of a token for log output.
func Mask(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:8] + "****"
}
