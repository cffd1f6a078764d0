package services

import (
	"testing"

	"projecthub/models"
)

func TestSortEntriesDesc(t *testing.T) {
	entries := []models.WorkHistoryEntry{
		{Date: "2025-01-10", Time: "09:00", Summary: "a"},
		{Date: "2025-03-01", Time: "08:15", Summary: "b"},
		{Date: "2025-01-10", Time: "17:30", Summary: "c"},
	}

	SortEntriesDesc(entries)

	want := []string{"b", "c", "a"}
	for i, summary := range want {
		if entries[i].Summary != summary {
			t.Errorf("position %d: expected %s, got %s", i, summary, entries[i].Summary)
		}
	}
}

func TestSortEntriesDescSameDay(t *testing.T) {
	entries := []models.WorkHistoryEntry{
		{Date: "2025-06-01", Time: "08:00", Summary: "early"},
		{Date: "2025-06-01", Time: "22:45", Summary: "late"},
	}

	SortEntriesDesc(entries)

	if entries[0].Summary != "late" {
		t.Errorf("expected latest time first, got %s", entries[0].Summary)
	}
}

func TestValidateEntry(t *testing.T) {
	if err := validateEntry("2025-06-01", "14:30", "stand-up"); err != nil {
		t.Errorf("expected valid entry, got %v", err)
	}

	cases := []struct {
		name    string
		date    string
		time    string
		summary string
	}{
		{"bad date", "01-06-2025", "14:30", "x"},
		{"bad time", "2025-06-01", "2:30pm", "x"},
		{"empty date", "", "14:30", "x"},
		{"empty summary", "2025-06-01", "14:30", ""},
	}
	for _, tc := range cases {
		if err := validateEntry(tc.date, tc.time, tc.summary); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
