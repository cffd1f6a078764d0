package services

import (
	"reflect"
	"testing"
	"time"

	"projecthub/models"
)

func TestAssignmentRowsEmptySetInsertsNothing(t *testing.T) {
	if rows := AssignmentRows("t1", nil, time.Now()); len(rows) != 0 {
		t.Errorf("empty set must produce no rows, got %v", rows)
	}
	if rows := AssignmentRows("t1", []string{}, time.Now()); len(rows) != 0 {
		t.Errorf("empty slice must produce no rows, got %v", rows)
	}
}

func TestAssignmentRowsOnePerMember(t *testing.T) {
	now := time.Now()
	rows := AssignmentRows("t1", []string{"u1", "u2", "u3"}, now)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, want := range []string{"u1", "u2", "u3"} {
		row, ok := rows[i].(models.TaskAssignment)
		if !ok {
			t.Fatalf("row %d has unexpected type %T", i, rows[i])
		}
		if row.TaskID != "t1" {
			t.Errorf("row %d: expected task t1, got %s", i, row.TaskID)
		}
		if row.UserID != want {
			t.Errorf("row %d: expected user %s, got %s", i, want, row.UserID)
		}
		if !row.AssignedAt.Equal(now) {
			t.Errorf("row %d: unexpected assignedAt %v", i, row.AssignedAt)
		}
	}
}

func TestMembersForTask(t *testing.T) {
	rows := []models.TaskAssignment{
		{TaskID: "t1", UserID: "u1"},
		{TaskID: "t2", UserID: "u2"},
		{TaskID: "t1", UserID: "u3"},
	}

	members := MembersForTask(rows, "t1")
	if !reflect.DeepEqual(members, []string{"u1", "u3"}) {
		t.Errorf("expected [u1 u3], got %v", members)
	}

	if got := MembersForTask(rows, "missing"); got != nil {
		t.Errorf("expected nil for unknown task, got %v", got)
	}
}

func TestMembersForTaskKeepsDuplicates(t *testing.T) {
	rows := []models.TaskAssignment{
		{TaskID: "t1", UserID: "u1"},
		{TaskID: "t1", UserID: "u1"},
	}

	members := MembersForTask(rows, "t1")
	if len(members) != 2 {
		t.Errorf("duplicate rows must be kept, got %v", members)
	}
}

func TestGroupAssignmentsByTask(t *testing.T) {
	rows := []models.TaskAssignment{
		{TaskID: "t1", UserID: "u1"},
		{TaskID: "t2", UserID: "u2"},
		{TaskID: "t1", UserID: "u3"},
	}

	grouped := GroupAssignmentsByTask(rows)
	if len(grouped) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(grouped))
	}
	if !reflect.DeepEqual(grouped["t1"], []string{"u1", "u3"}) {
		t.Errorf("expected t1 -> [u1 u3], got %v", grouped["t1"])
	}
	if !reflect.DeepEqual(grouped["t2"], []string{"u2"}) {
		t.Errorf("expected t2 -> [u2], got %v", grouped["t2"])
	}
}

func TestGroupAssignmentsByTaskEmpty(t *testing.T) {
	grouped := GroupAssignmentsByTask(nil)
	if len(grouped) != 0 {
		t.Errorf("expected empty map, got %v", grouped)
	}
}

func TestGroupMatchesPerTaskFilter(t *testing.T) {
	rows := []models.TaskAssignment{
		{TaskID: "t1", UserID: "u1"},
		{TaskID: "t2", UserID: "u2"},
		{TaskID: "t1", UserID: "u2"},
		{TaskID: "t3", UserID: "u1"},
	}

	grouped := GroupAssignmentsByTask(rows)
	for _, taskID := range []string{"t1", "t2", "t3"} {
		if !reflect.DeepEqual(grouped[taskID], MembersForTask(rows, taskID)) {
			t.Errorf("grouped[%s] = %v, filter = %v", taskID, grouped[taskID], MembersForTask(rows, taskID))
		}
	}
}
