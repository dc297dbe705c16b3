package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type StudySession struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	ContentID       uuid.UUID       `json:"content_id"`
	ActivityType    string          `json:"activity_type"`
	StartedAt       time.Time       `json:"started_at"`
	EndedAt         *time.Time      `json:"ended_at,omitempty"`
	DurationMinutes int             `json:"duration_minutes"`
	IsActive        bool            `json:"is_active"`
	EngagementScore *float64        `json:"engagement_score,omitempty"`
	WatchedRanges   json.RawMessage `json:"watched_ranges"`
	LastHeartbeatAt time.Time       `json:"last_heartbeat_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

type StartSessionRequest struct {
	ContentID    string `json:"content_id"`
	ActivityType string `json:"activity_type"`
}

type HeartbeatRequest struct {
	EngagementScore *float64        `json:"engagement_score"`
	WatchedRanges   json.RawMessage `json:"watched_ranges"`
}
