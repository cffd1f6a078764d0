package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// checkRole gates a handler on the Role header the JWT middleware injected.
func checkRole(r *http.Request, allowedRoles []string) error {
	userRole := r.Header.Get("Role")
	if userRole == "" {
		return fmt.Errorf("role is missing in request header")
	}

	for _, role := range allowedRoles {
		if role == userRole {
			return nil
		}
	}
	return fmt.Errorf("access forbidden: user does not have the required role")
}

func isAdmin(r *http.Request) bool {
	return r.Header.Get("Role") == "admin"
}

// callerEmail is the identity the JWT middleware resolved.
func callerEmail(r *http.Request) string {
	return r.Header.Get("User-Email")
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError writes the structured JSON error shape used by the
// privileged member endpoints.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
