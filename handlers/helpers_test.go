package handlers

import (
	"net/http/httptest"
	"testing"
)

func TestCheckRole(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/projects", nil)
	r.Header.Set("Role", "admin")

	if err := checkRole(r, []string{"admin"}); err != nil {
		t.Errorf("admin should pass admin check: %v", err)
	}
	if err := checkRole(r, []string{"admin", "viewer"}); err != nil {
		t.Errorf("admin should pass combined check: %v", err)
	}
}

func TestCheckRoleRejectsViewer(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/members/provision", nil)
	r.Header.Set("Role", "viewer")

	if err := checkRole(r, []string{"admin"}); err == nil {
		t.Error("viewer must not pass an admin-only check")
	}
}

func TestCheckRoleRejectsMissingHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/projects", nil)
	if err := checkRole(r, []string{"admin", "viewer"}); err == nil {
		t.Error("missing Role header must be rejected")
	}
}

func TestCallerEmail(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/profile", nil)
	r.Header.Set("User-Email", "ana@example.com")
	if callerEmail(r) != "ana@example.com" {
		t.Errorf("unexpected caller email %s", callerEmail(r))
	}
}
