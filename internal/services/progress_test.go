package services

import (
	"math"
	"testing"

	"olymprep-backend/internal/models"
)

func TestPromoteStatus(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		proposed string
		expected string
	}{
		{"forward to in_progress", models.StatusNotAttempted, models.StatusInProgress, models.StatusInProgress},
		{"forward to completed", models.StatusInProgress, models.StatusCompleted, models.StatusCompleted},
		{"completed never regresses", models.StatusCompleted, models.StatusInProgress, models.StatusCompleted},
		{"attempted never regresses", models.StatusAttempted, models.StatusNotAttempted, models.StatusAttempted},
		{"same status is a no-op", models.StatusAttempted, models.StatusAttempted, models.StatusAttempted},
		{"unknown proposed keeps current", models.StatusInProgress, "bogus", models.StatusInProgress},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PromoteStatus(tc.current, tc.proposed); got != tc.expected {
				t.Errorf("PromoteStatus(%q, %q) = %q, expected %q", tc.current, tc.proposed, got, tc.expected)
			}
		})
	}
}

func TestIsAttempted(t *testing.T) {
	tests := []struct {
		status   string
		expected bool
	}{
		{models.StatusNotAttempted, false},
		{models.StatusInProgress, false},
		{models.StatusAttempted, true},
		{models.StatusCompleted, true},
	}

	for _, tc := range tests {
		if got := IsAttempted(tc.status); got != tc.expected {
			t.Errorf("IsAttempted(%q) = %v, expected %v", tc.status, got, tc.expected)
		}
	}
}

func TestBuildSummary(t *testing.T) {
	counts := []models.StatusCount{
		{Status: models.StatusInProgress, Count: 3},
		{Status: models.StatusAttempted, Count: 2},
		{Status: models.StatusCompleted, Count: 5},
	}

	summary := BuildSummary(counts, 20)

	if summary.TotalContent != 20 {
		t.Errorf("Expected total 20, got %d", summary.TotalContent)
	}
	if summary.AttemptedContent != 7 {
		t.Errorf("Expected 7 attempted, got %d", summary.AttemptedContent)
	}
	if math.Abs(summary.AttemptRate-0.35) > 1e-9 {
		t.Errorf("Expected attempt rate 0.35, got %f", summary.AttemptRate)
	}

	// Untracked contents show up as a synthetic not_attempted bucket.
	found := false
	for _, c := range summary.ByStatus {
		if c.Status == models.StatusNotAttempted {
			found = true
			if c.Count != 10 {
				t.Errorf("Expected 10 not_attempted, got %d", c.Count)
			}
		}
	}
	if !found {
		t.Error("Expected a not_attempted bucket in the summary")
	}
}

func TestBuildSummary_EmptyCatalog(t *testing.T) {
	summary := BuildSummary(nil, 0)

	if summary.AttemptRate != 0 {
		t.Errorf("Expected zero attempt rate for empty catalog, got %f", summary.AttemptRate)
	}
	if summary.AttemptedContent != 0 {
		t.Errorf("Expected zero attempted, got %d", summary.AttemptedContent)
	}
}
