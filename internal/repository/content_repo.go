package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"olymprep-backend/internal/models"
)

type ContentRepo struct {
	pool *pgxpool.Pool
}

func NewContentRepo(pool *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{pool: pool}
}

const contentColumns = `id, unit, chapter, topic, concept, title, kind, source_url,
	video_id, page_count, sequence, is_public, created_by, created_at`

func (r *ContentRepo) Create(ctx context.Context, c *models.Content) error {
	query := `
		INSERT INTO contents (id, unit, chapter, topic, concept, title, kind, source_url,
			video_id, page_count, sequence, is_public, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at`

	c.ID = uuid.New()
	return r.pool.QueryRow(ctx, query,
		c.ID, c.Unit, c.Chapter, c.Topic, c.Concept, c.Title, c.Kind, c.SourceURL,
		c.VideoID, c.PageCount, c.Sequence, c.IsPublic, c.CreatedBy,
	).Scan(&c.CreatedAt)
}

func (r *ContentRepo) scanContent(row interface{ Scan(dest ...any) error }) (*models.Content, error) {
	c := &models.Content{}
	err := row.Scan(
		&c.ID, &c.Unit, &c.Chapter, &c.Topic, &c.Concept, &c.Title, &c.Kind, &c.SourceURL,
		&c.VideoID, &c.PageCount, &c.Sequence, &c.IsPublic, &c.CreatedBy, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ContentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	return r.scanContent(r.pool.QueryRow(ctx,
		`SELECT `+contentColumns+` FROM contents WHERE id = $1`, id))
}

// List returns contents ordered by unit and sequence. When publicOnly is set,
// subscriber-only rows are filtered out.
func (r *ContentRepo) List(ctx context.Context, publicOnly bool) ([]models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents`
	if publicOnly {
		query += ` WHERE is_public = TRUE`
	}
	query += ` ORDER BY unit, sequence`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contents []models.Content
	for rows.Next() {
		c, err := r.scanContent(rows)
		if err != nil {
			return nil, err
		}
		contents = append(contents, *c)
	}
	return contents, rows.Err()
}

func (r *ContentRepo) Update(ctx context.Context, c *models.Content) error {
	// Identity (id, kind) stays fixed once progress rows reference the content.
	_, err := r.pool.Exec(ctx, `
		UPDATE contents
		SET unit = $2, chapter = $3, topic = $4, concept = $5, title = $6,
			source_url = $7, video_id = $8, page_count = $9, sequence = $10, is_public = $11
		WHERE id = $1
	`, c.ID, c.Unit, c.Chapter, c.Topic, c.Concept, c.Title,
		c.SourceURL, c.VideoID, c.PageCount, c.Sequence, c.IsPublic)
	return err
}

func (r *ContentRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	// Refuse deletion while progress rows reference the content.
	var referenced bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM user_progress WHERE content_id = $1)", id).Scan(&referenced)
	if err != nil {
		return false, err
	}
	if referenced {
		return false, nil
	}
	_, err = r.pool.Exec(ctx, "DELETE FROM contents WHERE id = $1", id)
	return err == nil, err
}

// UnitContentIDs lists every content id in a unit, used by the unit_completed
// achievement criterion.
func (r *ContentRepo) UnitContentIDs(ctx context.Context, unit string) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, "SELECT id FROM contents WHERE unit = $1", unit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ContentRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM contents").Scan(&n)
	return n, err
}
