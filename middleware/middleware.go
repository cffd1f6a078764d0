package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"projecthub/logging"
	"projecthub/utils"
)

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JWTAuthMiddleware validates the Bearer token and injects the resolved
// identity as Role and User-Email headers for downstream handlers.
func JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
			unauthorized(w, "Authorization header missing")
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ValidateToken(tokenStr)
		if err != nil {
			logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token provided for request to %s %s: %v", r.Method, r.URL.Path, err)
			unauthorized(w, "Invalid token")
			return
		}

		r.Header.Set("Role", claims.Role)
		r.Header.Set("User-Email", claims.Email)
		next.ServeHTTP(w, r)
	})
}
