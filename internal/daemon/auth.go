package daemon

import (
	"encoding/json"
	"net/http"
	"strings"

	"shopclock/internal/api"
)

// authMiddleware gates a handler behind bearer-token auth. An empty token
// disables the check entirely, which is how single-operator local setups
// run shopclockd.
func authMiddleware(token string, next http.HandlerFunc) http.HandlerFunc {
	if token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if bearerToken(r) != token {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "unauthorized"})
			return
		}
		next(w, r)
	}
}

// bearerToken extracts the credential from the Authorization header, or
// returns "" when the header is absent or uses another scheme.
func bearerToken(r *http.Request) string {
	value := r.Header.Get("Authorization")
	if !strings.HasPrefix(value, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(value, "Bearer ")
}
