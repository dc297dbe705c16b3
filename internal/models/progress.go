package models

import (
	"time"

	"github.com/google/uuid"
)

// Progress lifecycle. "attempted" and "completed" both count as attempted
// content in summaries; a row never moves backwards.
const (
	StatusNotAttempted = "not_attempted"
	StatusInProgress   = "in_progress"
	StatusAttempted    = "attempted"
	StatusCompleted    = "completed"
)

// StatusLifecycle lists the statuses in promotion order. The Go comparison in
// PromoteStatus and the rank CASE inside the Promote SQL statement are both
// derived from this slice, so there is exactly one definition of the ladder.
var StatusLifecycle = []string{StatusNotAttempted, StatusInProgress, StatusAttempted, StatusCompleted}

// StatusRank returns the position of a status in the lifecycle. Unknown
// statuses rank lowest, so they can never overwrite a known one.
func StatusRank(status string) int {
	for i, s := range StatusLifecycle {
		if s == status {
			return i
		}
	}
	return 0
}

type UserProgress struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	ContentID        uuid.UUID  `json:"content_id"`
	Status           string     `json:"status"`
	TimeSpentMinutes int        `json:"time_spent_minutes"`
	LastAccessedAt   *time.Time `json:"last_accessed_at"`
	IsBookmarked     bool       `json:"is_bookmarked"`
	Notes            string     `json:"notes"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type ProgressSummary struct {
	ByStatus         []StatusCount `json:"by_status"`
	TotalContent     int           `json:"total_content"`
	AttemptedContent int           `json:"attempted_content"`
	AttemptRate      float64       `json:"attempt_rate"`
}

type ProgressUpdateRequest struct {
	IsBookmarked *bool   `json:"is_bookmarked"`
	Notes        *string `json:"notes"`
	Completed    *bool   `json:"completed"`
}
