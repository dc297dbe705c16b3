package models

import (
	"time"

	"github.com/google/uuid"
)

// Achievement criteria
const (
	CriteriaConsecutiveDays  = "consecutive_days"
	CriteriaContentCompleted = "content_completed"
	CriteriaUnitCompleted    = "unit_completed"
	CriteriaTestScore        = "test_score"
	CriteriaStudyTime        = "study_time"
	CriteriaCustom           = "custom"
)

type Achievement struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Code            string     `json:"code"`
	Title           string     `json:"title"`
	CriteriaType    string     `json:"criteria_type"`
	Unit            *string    `json:"unit,omitempty"`
	Threshold       int        `json:"threshold"`
	CurrentProgress int        `json:"current_progress"`
	IsUnlocked      bool       `json:"is_unlocked"`
	UnlockedAt      *time.Time `json:"unlocked_at,omitempty"`
	Points          int        `json:"points"`
}

type AchievementCheckResult struct {
	NewlyUnlocked []Achievement `json:"newly_unlocked"`
	TotalUnlocked int           `json:"total_unlocked"`
	TotalPoints   int           `json:"total_points"`
}

type TestScore struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	TestName string    `json:"test_name"`
	Score    int       `json:"score"`
	MaxScore int       `json:"max_score"`
	TakenAt  time.Time `json:"taken_at"`
}

type SubmitScoreRequest struct {
	TestName string `json:"test_name"`
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
}
