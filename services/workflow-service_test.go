package services

import (
	"testing"

	"projecthub/models"
)

func TestBlockedFromDependencies(t *testing.T) {
	if BlockedFromDependencies(nil) {
		t.Error("no dependencies must not block")
	}

	allDone := []models.TaskNode{
		{ID: "a", Status: string(models.StatusDone)},
		{ID: "b", Status: string(models.StatusDone)},
	}
	if BlockedFromDependencies(allDone) {
		t.Error("all-done dependencies must not block")
	}

	oneOpen := []models.TaskNode{
		{ID: "a", Status: string(models.StatusDone)},
		{ID: "b", Status: string(models.StatusInProgress)},
	}
	if !BlockedFromDependencies(oneOpen) {
		t.Error("an unfinished dependency must block")
	}

	todoDep := []models.TaskNode{{ID: "a", Status: string(models.StatusTodo)}}
	if !BlockedFromDependencies(todoDep) {
		t.Error("a todo dependency must block")
	}
}
