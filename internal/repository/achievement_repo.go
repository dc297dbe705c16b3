package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"olymprep-backend/internal/models"
)

type AchievementRepo struct {
	pool *pgxpool.Pool
}

func NewAchievementRepo(pool *pgxpool.Pool) *AchievementRepo {
	return &AchievementRepo{pool: pool}
}

const achievementColumns = `id, user_id, code, title, criteria_type, unit, threshold,
	current_progress, is_unlocked, unlocked_at, points`

// Seed instantiates the fixed rule catalog for a user. Existing rows are left
// untouched, so re-seeding is a cheap no-op.
func (r *AchievementRepo) Seed(ctx context.Context, userID uuid.UUID, catalog []models.Achievement) error {
	for _, a := range catalog {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO achievements (id, user_id, code, title, criteria_type, unit, threshold, points)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (user_id, code) DO NOTHING
		`, uuid.New(), userID, a.Code, a.Title, a.CriteriaType, a.Unit, a.Threshold, a.Points)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *AchievementRepo) scanAchievement(row interface{ Scan(dest ...any) error }) (*models.Achievement, error) {
	a := &models.Achievement{}
	err := row.Scan(
		&a.ID, &a.UserID, &a.Code, &a.Title, &a.CriteriaType, &a.Unit, &a.Threshold,
		&a.CurrentProgress, &a.IsUnlocked, &a.UnlockedAt, &a.Points,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AchievementRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Achievement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+achievementColumns+` FROM achievements WHERE user_id = $1 ORDER BY code`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Achievement
	for rows.Next() {
		a, err := r.scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

func (r *AchievementRepo) ListLocked(ctx context.Context, userID uuid.UUID) ([]models.Achievement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+achievementColumns+` FROM achievements WHERE user_id = $1 AND is_unlocked = FALSE ORDER BY code`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Achievement
	for rows.Next() {
		a, err := r.scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

// RecordProgress stores a recomputed metric. GREATEST keeps current_progress
// monotonic and the is_unlocked guard makes unlocking one-way.
func (r *AchievementRepo) RecordProgress(ctx context.Context, id uuid.UUID, progress int, unlock bool, at time.Time) error {
	if unlock {
		_, err := r.pool.Exec(ctx, `
			UPDATE achievements
			SET current_progress = GREATEST(current_progress, $2),
				is_unlocked = TRUE,
				unlocked_at = COALESCE(unlocked_at, $3)
			WHERE id = $1
		`, id, progress, at)
		return err
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE achievements
		SET current_progress = GREATEST(current_progress, $2)
		WHERE id = $1 AND is_unlocked = FALSE
	`, id, progress)
	return err
}

func (r *AchievementRepo) Totals(ctx context.Context, userID uuid.UUID) (unlocked, points int, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(points), 0)
		FROM achievements
		WHERE user_id = $1 AND is_unlocked = TRUE
	`, userID).Scan(&unlocked, &points)
	return unlocked, points, err
}
