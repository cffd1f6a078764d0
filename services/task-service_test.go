package services

import (
	"testing"

	"projecthub/models"
)

func TestValidateTaskEnums(t *testing.T) {
	if err := ValidateTaskEnums(models.StatusTodo, models.PriorityHigh, models.TypeDevelopment); err != nil {
		t.Errorf("expected valid enums, got %v", err)
	}

	if err := ValidateTaskEnums("archived", models.PriorityHigh, models.TypeDevelopment); err == nil {
		t.Error("expected error for unknown status")
	}
	if err := ValidateTaskEnums(models.StatusTodo, "critical", models.TypeDevelopment); err == nil {
		t.Error("expected error for unknown priority")
	}
	if err := ValidateTaskEnums(models.StatusTodo, models.PriorityLow, "design"); err == nil {
		t.Error("expected error for unknown task type")
	}
}

func TestTaskStatusSetIsClosed(t *testing.T) {
	valid := []models.TaskStatus{models.StatusTodo, models.StatusInProgress, models.StatusBlocked, models.StatusDone}
	for _, s := range valid {
		if !models.ValidTaskStatus(s) {
			t.Errorf("expected %s to be valid", s)
		}
	}
	for _, s := range []models.TaskStatus{"", "TODO", "doing", "done "} {
		if models.ValidTaskStatus(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}
