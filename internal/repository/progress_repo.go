package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"olymprep-backend/internal/models"
)

type ProgressRepo struct {
	pool *pgxpool.Pool
}

func NewProgressRepo(pool *pgxpool.Pool) *ProgressRepo {
	return &ProgressRepo{pool: pool}
}

// Touch upserts the (user, content) row on session start: first open creates it
// as in_progress, later opens only bump last_accessed_at.
func (r *ProgressRepo) Touch(ctx context.Context, userID, contentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_progress (id, user_id, content_id, status, time_spent_minutes, last_accessed_at)
		VALUES ($1, $2, $3, 'in_progress', 0, NOW())
		ON CONFLICT (user_id, content_id) DO UPDATE
		SET last_accessed_at = NOW(),
			status = CASE WHEN user_progress.status = 'not_attempted' THEN 'in_progress' ELSE user_progress.status END
	`, uuid.New(), userID, contentID)
	return err
}

// AddTime folds a closed session's duration into the row, creating it if the
// open write was lost. timeSpent only ever grows.
func (r *ProgressRepo) AddTime(ctx context.Context, userID, contentID uuid.UUID, minutes int) error {
	if minutes < 0 {
		minutes = 0
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_progress (id, user_id, content_id, status, time_spent_minutes, last_accessed_at)
		VALUES ($1, $2, $3, 'in_progress', $4, NOW())
		ON CONFLICT (user_id, content_id) DO UPDATE
		SET time_spent_minutes = user_progress.time_spent_minutes + $4,
			last_accessed_at = NOW()
	`, uuid.New(), userID, contentID, minutes)
	return err
}

// statusRankSQL renders a rank CASE for the given column expression from
// models.StatusLifecycle, so the SQL ladder cannot drift from the Go one.
// Inputs are compile-time constants, never user data.
func statusRankSQL(expr string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CASE %s", expr)
	for _, s := range models.StatusLifecycle {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", s, models.StatusRank(s))
	}
	b.WriteString(" ELSE 0 END")
	return b.String()
}

// Promote raises the status, never lowering it. The rank comparison runs inside
// the statement so concurrent writers cannot regress a row.
func (r *ProgressRepo) Promote(ctx context.Context, userID, contentID uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_progress (id, user_id, content_id, status, time_spent_minutes, last_accessed_at)
		VALUES ($1, $2, $3, $4, 0, NOW())
		ON CONFLICT (user_id, content_id) DO UPDATE
		SET status = EXCLUDED.status,
			last_accessed_at = NOW()
		WHERE `+statusRankSQL("user_progress.status")+` < `+statusRankSQL("EXCLUDED.status"),
		uuid.New(), userID, contentID, status)
	return err
}

func (r *ProgressRepo) SetBookmark(ctx context.Context, userID, contentID uuid.UUID, bookmarked bool) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_progress (id, user_id, content_id, status, time_spent_minutes, is_bookmarked)
		VALUES ($1, $2, $3, 'not_attempted', 0, $4)
		ON CONFLICT (user_id, content_id) DO UPDATE SET is_bookmarked = $4
	`, uuid.New(), userID, contentID, bookmarked)
	return err
}

func (r *ProgressRepo) SetNotes(ctx context.Context, userID, contentID uuid.UUID, notes string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_progress (id, user_id, content_id, status, time_spent_minutes, notes)
		VALUES ($1, $2, $3, 'not_attempted', 0, $4)
		ON CONFLICT (user_id, content_id) DO UPDATE SET notes = $4
	`, uuid.New(), userID, contentID, notes)
	return err
}

func (r *ProgressRepo) Get(ctx context.Context, userID, contentID uuid.UUID) (*models.UserProgress, error) {
	p := &models.UserProgress{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, content_id, status, time_spent_minutes, last_accessed_at, is_bookmarked, notes
		FROM user_progress
		WHERE user_id = $1 AND content_id = $2
	`, userID, contentID).Scan(
		&p.ID, &p.UserID, &p.ContentID, &p.Status, &p.TimeSpentMinutes, &p.LastAccessedAt, &p.IsBookmarked, &p.Notes,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProgressRepo) CountsByStatus(ctx context.Context, userID uuid.UUID) ([]models.StatusCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM user_progress
		WHERE user_id = $1
		GROUP BY status
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.StatusCount
	for rows.Next() {
		var sc models.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}

func (r *ProgressRepo) CountCompleted(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM user_progress
		WHERE user_id = $1 AND status = 'completed'
	`, userID).Scan(&n)
	return n, err
}

// CompletedInUnit counts the user's completed rows among the given content ids.
func (r *ProgressRepo) CompletedInUnit(ctx context.Context, userID uuid.UUID, contentIDs []uuid.UUID) (int, error) {
	if len(contentIDs) == 0 {
		return 0, nil
	}
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM user_progress
		WHERE user_id = $1 AND status = 'completed' AND content_id = ANY($2)
	`, userID, contentIDs).Scan(&n)
	return n, err
}
