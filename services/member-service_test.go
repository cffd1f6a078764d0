package services

import (
	"testing"

	"projecthub/models"
)

func TestSelfRemovalRefused(t *testing.T) {
	member := &models.TeamMember{Email: "ana@example.com"}

	if !selfRemoval(member, "ana@example.com") {
		t.Error("removing your own membership row must be flagged")
	}
	if selfRemoval(member, "marko@example.com") {
		t.Error("removing another member must not be flagged")
	}
}
