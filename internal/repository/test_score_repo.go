package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"olymprep-backend/internal/models"
)

type TestScoreRepo struct {
	pool *pgxpool.Pool
}

func NewTestScoreRepo(pool *pgxpool.Pool) *TestScoreRepo {
	return &TestScoreRepo{pool: pool}
}

func (r *TestScoreRepo) Create(ctx context.Context, s *models.TestScore) error {
	s.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO test_scores (id, user_id, test_name, score, max_score)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING taken_at
	`, s.ID, s.UserID, s.TestName, s.Score, s.MaxScore).Scan(&s.TakenAt)
}

func (r *TestScoreRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TestScore, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, test_name, score, max_score, taken_at
		FROM test_scores
		WHERE user_id = $1
		ORDER BY taken_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []models.TestScore
	for rows.Next() {
		var s models.TestScore
		if err := rows.Scan(&s.ID, &s.UserID, &s.TestName, &s.Score, &s.MaxScore, &s.TakenAt); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// BestScore is the running max used by the test_score criterion.
func (r *TestScoreRepo) BestScore(ctx context.Context, userID uuid.UUID) (int, error) {
	var best int
	err := r.pool.QueryRow(ctx,
		"SELECT COALESCE(MAX(score), 0) FROM test_scores WHERE user_id = $1", userID).Scan(&best)
	return best, err
}
