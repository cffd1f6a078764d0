package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"projecthub/utils"
)

func TestJWTAuthMiddlewareInjectsIdentity(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	tokenStr, err := utils.GenerateToken("ana@example.com", "admin")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var gotRole, gotEmail string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = r.Header.Get("Role")
		gotEmail = r.Header.Get("User-Email")
	})

	r := httptest.NewRequest("GET", "/api/projects", nil)
	r.Header.Set("Authorization", "Bearer "+tokenStr)
	w := httptest.NewRecorder()

	JWTAuthMiddleware(next).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotRole != "admin" || gotEmail != "ana@example.com" {
		t.Errorf("expected injected identity, got role=%q email=%q", gotRole, gotEmail)
	}
}

func TestJWTAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a token")
	})

	r := httptest.NewRequest("GET", "/api/projects", nil)
	w := httptest.NewRecorder()

	JWTAuthMiddleware(next).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json error body, got %s", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected a populated error field")
	}
}

func TestJWTAuthMiddlewareRejectsBadToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run with an invalid token")
	})

	r := httptest.NewRequest("GET", "/api/projects", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()

	JWTAuthMiddleware(next).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
