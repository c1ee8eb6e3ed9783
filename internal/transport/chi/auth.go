package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/claimsight/claimsight/internal/transport/api"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// wsPathPrefix marks the WebSocket endpoint, which authenticates via query
// parameter instead of headers (browser clients cannot set them).
const wsPathPrefix = "/ws/"

// BearerAuthMiddleware returns a middleware that validates Bearer tokens.
// If apiKeys is empty, authentication is disabled (pass-through).
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := make([]string, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			validKeys = append(validKeys, k)
		}
	}

	return func(next http.Handler) http.Handler {
		// Auth disabled, pass everything through
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Exempt paths
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			if strings.HasPrefix(r.URL.Path, wsPathPrefix) {
				if !keyMatches(validKeys, r.URL.Query().Get("api_key")) {
					writeError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid api key")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					api.CodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			if !keyMatches(validKeys, auth[len(bearerPrefix):]) {
				writeError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// keyMatches checks the token against every configured key in constant time
// per key, without early exit on a match.
func keyMatches(keys []string, token string) bool {
	match := false
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(token)) == 1 {
			match = true
		}
	}
	return match
}
