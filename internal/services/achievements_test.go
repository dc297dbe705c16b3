package services

import (
	"testing"
	"time"

	"olymprep-backend/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestConsecutiveDays(t *testing.T) {
	today := day(2026, 3, 10)

	tests := []struct {
		name     string
		dates    []time.Time
		expected int
	}{
		{
			name:     "no sessions",
			dates:    nil,
			expected: 0,
		},
		{
			name:     "only today",
			dates:    []time.Time{day(2026, 3, 10)},
			expected: 1,
		},
		{
			name: "five day streak",
			dates: []time.Time{
				day(2026, 3, 10), day(2026, 3, 9), day(2026, 3, 8),
				day(2026, 3, 7), day(2026, 3, 6),
			},
			expected: 5,
		},
		{
			name: "gap breaks the streak",
			dates: []time.Time{
				day(2026, 3, 10), day(2026, 3, 9),
				// March 8 missing
				day(2026, 3, 7), day(2026, 3, 6),
			},
			expected: 2,
		},
		{
			name:     "no session today means no streak",
			dates:    []time.Time{day(2026, 3, 9), day(2026, 3, 8)},
			expected: 0,
		},
		{
			name: "streak across a month boundary",
			dates: []time.Time{
				day(2026, 3, 10), day(2026, 3, 9), day(2026, 3, 8),
				day(2026, 3, 7), day(2026, 3, 6), day(2026, 3, 5),
				day(2026, 3, 4), day(2026, 3, 3), day(2026, 3, 2),
				day(2026, 3, 1), day(2026, 2, 28),
			},
			expected: 11,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ConsecutiveDays(tc.dates, today); got != tc.expected {
				t.Errorf("ConsecutiveDays = %d, expected %d", got, tc.expected)
			}
		})
	}
}

func TestConsecutiveDays_IgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2026, 3, 10, 23, 45, 0, 0, time.UTC)
	dates := []time.Time{day(2026, 3, 10), day(2026, 3, 9)}

	if got := ConsecutiveDays(dates, today); got != 2 {
		t.Errorf("Expected streak 2 late in the day, got %d", got)
	}
}

func TestAchievementCatalog(t *testing.T) {
	codes := make(map[string]bool)
	for _, a := range achievementCatalog {
		if codes[a.Code] {
			t.Errorf("Duplicate achievement code %q", a.Code)
		}
		codes[a.Code] = true

		if a.Threshold <= 0 {
			t.Errorf("Achievement %q has non-positive threshold %d", a.Code, a.Threshold)
		}
		if a.Points <= 0 {
			t.Errorf("Achievement %q has non-positive points %d", a.Code, a.Points)
		}
		if a.CriteriaType == models.CriteriaUnitCompleted && a.Unit == nil {
			t.Errorf("Achievement %q is unit-scoped but has no unit", a.Code)
		}
	}
}
