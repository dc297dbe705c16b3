package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"olymprep-backend/internal/models"
)

type StudySessionRepo struct {
	pool *pgxpool.Pool
}

func NewStudySessionRepo(pool *pgxpool.Pool) *StudySessionRepo {
	return &StudySessionRepo{pool: pool}
}

// CloseActive force-closes every active session for the user in one statement,
// so a stale session (killed browser, second tab) can never stay open alongside
// a new one. Durations are computed in whole minutes, capped at 12 hours.
func (r *StudySessionRepo) CloseActive(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE study_sessions
		SET ended_at = NOW(),
			is_active = FALSE,
			duration_minutes = GREATEST(0, LEAST(720, ROUND(EXTRACT(EPOCH FROM (NOW() - started_at)) / 60)::INT)),
			last_heartbeat_at = NOW()
		WHERE user_id = $1
		  AND is_active = TRUE
	`, userID)
	return err
}

func (r *StudySessionRepo) Start(ctx context.Context, s *models.StudySession) error {
	if len(s.WatchedRanges) == 0 {
		s.WatchedRanges = json.RawMessage("[]")
	}

	query := `
		INSERT INTO study_sessions (user_id, content_id, activity_type, is_active, watched_ranges)
		VALUES ($1, $2, $3, TRUE, $4)
		RETURNING id, started_at, last_heartbeat_at, created_at`

	s.IsActive = true
	return r.pool.QueryRow(ctx, query, s.UserID, s.ContentID, s.ActivityType, s.WatchedRanges).Scan(
		&s.ID,
		&s.StartedAt,
		&s.LastHeartbeatAt,
		&s.CreatedAt,
	)
}

func (r *StudySessionRepo) Heartbeat(ctx context.Context, sessionID, userID uuid.UUID, engagement *float64, ranges json.RawMessage) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE study_sessions
		SET last_heartbeat_at = NOW(),
			engagement_score = COALESCE($3, engagement_score),
			watched_ranges = COALESCE($4, watched_ranges)
		WHERE id = $1
		  AND user_id = $2
		  AND is_active = TRUE
	`, sessionID, userID, engagement, ranges)
	return err
}

// Close finalizes a session and returns it with the computed duration. Closing
// an already-closed session is a no-op that returns the stored row with
// wasActive false, so callers can tell a real close from a repeat.
func (r *StudySessionRepo) Close(ctx context.Context, sessionID, userID uuid.UUID) (*models.StudySession, bool, error) {
	s := &models.StudySession{}
	var wasActive bool
	err := r.pool.QueryRow(ctx, `
		UPDATE study_sessions s
		SET ended_at = CASE WHEN s.is_active THEN NOW() ELSE s.ended_at END,
			duration_minutes = CASE
				WHEN s.is_active THEN GREATEST(0, LEAST(720, ROUND(EXTRACT(EPOCH FROM (NOW() - s.started_at)) / 60)::INT))
				ELSE s.duration_minutes
			END,
			last_heartbeat_at = NOW(),
			is_active = FALSE
		FROM (
			SELECT id, is_active AS was_active
			FROM study_sessions
			WHERE id = $1 AND user_id = $2
			FOR UPDATE
		) prev
		WHERE s.id = prev.id
		RETURNING s.id, s.user_id, s.content_id, s.activity_type, s.started_at, s.ended_at,
			s.duration_minutes, s.is_active, s.engagement_score, s.watched_ranges, s.last_heartbeat_at, s.created_at,
			prev.was_active
	`, sessionID, userID).Scan(
		&s.ID, &s.UserID, &s.ContentID, &s.ActivityType, &s.StartedAt, &s.EndedAt,
		&s.DurationMinutes, &s.IsActive, &s.EngagementScore, &s.WatchedRanges, &s.LastHeartbeatAt, &s.CreatedAt,
		&wasActive,
	)
	if err != nil {
		return nil, false, err
	}
	return s, wasActive, nil
}

func (r *StudySessionRepo) GetActive(ctx context.Context, userID uuid.UUID) (*models.StudySession, error) {
	s := &models.StudySession{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, content_id, activity_type, started_at, ended_at,
			duration_minutes, is_active, engagement_score, watched_ranges, last_heartbeat_at, created_at
		FROM study_sessions
		WHERE user_id = $1 AND is_active = TRUE
	`, userID).Scan(
		&s.ID, &s.UserID, &s.ContentID, &s.ActivityType, &s.StartedAt, &s.EndedAt,
		&s.DurationMinutes, &s.IsActive, &s.EngagementScore, &s.WatchedRanges, &s.LastHeartbeatAt, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SessionDates returns the distinct calendar days (UTC, newest first) on which
// the user closed at least one session. Feeds the consecutive_days criterion.
func (r *StudySessionRepo) SessionDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT DATE(started_at AT TIME ZONE 'UTC') AS d
		FROM study_sessions
		WHERE user_id = $1 AND ended_at IS NOT NULL
		ORDER BY d DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (r *StudySessionRepo) TotalStudyMinutes(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(duration_minutes), 0)
		FROM study_sessions
		WHERE user_id = $1 AND ended_at IS NOT NULL
	`, userID).Scan(&total)
	return total, err
}
