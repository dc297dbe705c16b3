package services

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"olymprep-backend/internal/models"
	"olymprep-backend/internal/repository"
)

// PromoteStatus returns the higher-ranked of the two statuses; the lifecycle
// never moves backwards. Ranks come from models.StatusLifecycle, the same
// definition the repository renders into its Promote statement.
func PromoteStatus(current, proposed string) string {
	if models.StatusRank(proposed) > models.StatusRank(current) {
		return proposed
	}
	return current
}

// IsAttempted reports whether a status counts toward the attempt rate.
// "attempted" and "completed" are one bucket there.
func IsAttempted(status string) bool {
	return status == models.StatusAttempted || status == models.StatusCompleted
}

// ProgressService aggregates per-(user, content) progress rows and derives the
// summary statistics shown on the student dashboard.
type ProgressService struct {
	progressRepo *repository.ProgressRepo
	contentRepo  *repository.ContentRepo
	sessions     *SessionService
}

func NewProgressService(progressRepo *repository.ProgressRepo, contentRepo *repository.ContentRepo, sessions *SessionService) *ProgressService {
	return &ProgressService{progressRepo: progressRepo, contentRepo: contentRepo, sessions: sessions}
}

// Summary groups the user's rows by status. Contents with no row yet count as
// not_attempted.
func (s *ProgressService) Summary(ctx context.Context, userID uuid.UUID) (*models.ProgressSummary, error) {
	counts, err := s.progressRepo.CountsByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	totalContent, err := s.contentRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return BuildSummary(counts, totalContent), nil
}

// BuildSummary derives the attempt rate from raw status counts.
func BuildSummary(counts []models.StatusCount, totalContent int) *models.ProgressSummary {
	tracked := 0
	attempted := 0
	for _, c := range counts {
		tracked += c.Count
		if IsAttempted(c.Status) {
			attempted += c.Count
		}
	}

	if notAttempted := totalContent - tracked; notAttempted > 0 {
		counts = append(counts, models.StatusCount{Status: models.StatusNotAttempted, Count: notAttempted})
	}

	summary := &models.ProgressSummary{
		ByStatus:         counts,
		TotalContent:     totalContent,
		AttemptedContent: attempted,
	}
	if totalContent > 0 {
		summary.AttemptRate = float64(attempted) / float64(totalContent)
	}
	return summary
}

// Update applies bookmark/notes changes and explicit completion signals.
func (s *ProgressService) Update(ctx context.Context, userID, contentID uuid.UUID, req models.ProgressUpdateRequest) (*models.UserProgress, error) {
	if _, err := s.contentRepo.GetByID(ctx, contentID); err != nil {
		return nil, &NotFoundError{Message: "Content not found"}
	}

	if req.IsBookmarked != nil {
		if err := s.progressRepo.SetBookmark(ctx, userID, contentID, *req.IsBookmarked); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		if err := s.progressRepo.SetNotes(ctx, userID, contentID, *req.Notes); err != nil {
			return nil, err
		}
	}
	if req.Completed != nil && *req.Completed {
		if err := s.progressRepo.Promote(ctx, userID, contentID, models.StatusCompleted); err != nil {
			return nil, err
		}
		s.sessions.enqueueAchievementCheck(ctx, userID)
	}

	progress, err := s.progressRepo.Get(ctx, userID, contentID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return &models.UserProgress{UserID: userID, ContentID: contentID, Status: models.StatusNotAttempted}, nil
		}
		return nil, err
	}
	return progress, nil
}

// MarkAttempted is the external-link path: the item counts as attempted the
// moment the user opens it.
func (s *ProgressService) MarkAttempted(ctx context.Context, userID, contentID uuid.UUID) {
	if err := s.progressRepo.Promote(ctx, userID, contentID, models.StatusAttempted); err != nil {
		log.Printf("progress: failed to mark attempted for user %s content %s: %v", userID, contentID, err)
	}
}
