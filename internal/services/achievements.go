package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"olymprep-backend/internal/models"
	"olymprep-backend/internal/repository"
)

func strPtr(s string) *string { return &s }

// The fixed rule catalog. Every user gets one row per rule; only the evaluator
// mutates them.
var achievementCatalog = []models.Achievement{
	{Code: "streak_5", Title: "Five-Day Streak", CriteriaType: models.CriteriaConsecutiveDays, Threshold: 5, Points: 50},
	{Code: "streak_30", Title: "Thirty-Day Streak", CriteriaType: models.CriteriaConsecutiveDays, Threshold: 30, Points: 300},
	{Code: "first_steps", Title: "First Steps", CriteriaType: models.CriteriaContentCompleted, Threshold: 1, Points: 10},
	{Code: "problem_solver", Title: "Problem Solver", CriteriaType: models.CriteriaContentCompleted, Threshold: 25, Points: 150},
	{Code: "algebra_master", Title: "Algebra Master", CriteriaType: models.CriteriaUnitCompleted, Unit: strPtr("Algebra"), Threshold: 1, Points: 100},
	{Code: "number_theory_master", Title: "Number Theory Master", CriteriaType: models.CriteriaUnitCompleted, Unit: strPtr("Number Theory"), Threshold: 1, Points: 100},
	{Code: "geometry_master", Title: "Geometry Master", CriteriaType: models.CriteriaUnitCompleted, Unit: strPtr("Geometry"), Threshold: 1, Points: 100},
	{Code: "combinatorics_master", Title: "Combinatorics Master", CriteriaType: models.CriteriaUnitCompleted, Unit: strPtr("Combinatorics"), Threshold: 1, Points: 100},
	{Code: "deep_work_600", Title: "Deep Work", CriteriaType: models.CriteriaStudyTime, Threshold: 600, Points: 120},
	{Code: "high_scorer_90", Title: "High Scorer", CriteriaType: models.CriteriaTestScore, Threshold: 90, Points: 200},
}

// AchievementService recomputes unlock state for the catalog against
// aggregated progress and session data. Evaluation runs on demand (session
// close, score submit, explicit check), never on a schedule.
type AchievementService struct {
	achievements *repository.AchievementRepo
	sessions     *repository.StudySessionRepo
	progress     *repository.ProgressRepo
	contents     *repository.ContentRepo
	scores       *repository.TestScoreRepo
	pubsub       *redis.Client
}

func NewAchievementService(
	achievements *repository.AchievementRepo,
	sessions *repository.StudySessionRepo,
	progress *repository.ProgressRepo,
	contents *repository.ContentRepo,
	scores *repository.TestScoreRepo,
	pubsubClient *redis.Client,
) *AchievementService {
	return &AchievementService{
		achievements: achievements,
		sessions:     sessions,
		progress:     progress,
		contents:     contents,
		scores:       scores,
		pubsub:       pubsubClient,
	}
}

// SeedFor instantiates the catalog for a user; safe to call repeatedly.
func (s *AchievementService) SeedFor(ctx context.Context, userID uuid.UUID) error {
	return s.achievements.Seed(ctx, userID, achievementCatalog)
}

func (s *AchievementService) List(ctx context.Context, userID uuid.UUID) ([]models.Achievement, error) {
	if err := s.achievements.Seed(ctx, userID, achievementCatalog); err != nil {
		return nil, err
	}
	return s.achievements.ListByUser(ctx, userID)
}

// Evaluate recomputes every locked achievement for the user. Unlocked rows are
// skipped entirely; unlocking is one-way and current_progress never shrinks.
func (s *AchievementService) Evaluate(ctx context.Context, userID uuid.UUID) (*models.AchievementCheckResult, error) {
	if err := s.achievements.Seed(ctx, userID, achievementCatalog); err != nil {
		return nil, err
	}

	locked, err := s.achievements.ListLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := &models.AchievementCheckResult{NewlyUnlocked: []models.Achievement{}}

	for _, a := range locked {
		metric, unlock, err := s.measure(ctx, userID, &a, now)
		if err != nil {
			log.Printf("achievements: failed to measure %s for user %s: %v", a.Code, userID, err)
			continue
		}

		if err := s.achievements.RecordProgress(ctx, a.ID, metric, unlock, now); err != nil {
			log.Printf("achievements: failed to record %s for user %s: %v", a.Code, userID, err)
			continue
		}

		if unlock {
			a.IsUnlocked = true
			a.UnlockedAt = &now
			if metric > a.CurrentProgress {
				a.CurrentProgress = metric
			}
			result.NewlyUnlocked = append(result.NewlyUnlocked, a)
			s.publishUnlock(ctx, userID, a)
		}
	}

	result.TotalUnlocked, result.TotalPoints, err = s.achievements.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *AchievementService) measure(ctx context.Context, userID uuid.UUID, a *models.Achievement, now time.Time) (metric int, unlock bool, err error) {
	switch a.CriteriaType {
	case models.CriteriaConsecutiveDays:
		dates, err := s.sessions.SessionDates(ctx, userID)
		if err != nil {
			return 0, false, err
		}
		metric = ConsecutiveDays(dates, now)
		return metric, metric >= a.Threshold, nil

	case models.CriteriaContentCompleted:
		metric, err = s.progress.CountCompleted(ctx, userID)
		if err != nil {
			return 0, false, err
		}
		return metric, metric >= a.Threshold, nil

	case models.CriteriaUnitCompleted:
		if a.Unit == nil {
			return 0, false, nil
		}
		// Unit membership is resolved at evaluation time; renaming a unit
		// shifts what is measured rather than corrupting stored progress.
		ids, err := s.contents.UnitContentIDs(ctx, *a.Unit)
		if err != nil {
			return 0, false, err
		}
		metric, err = s.progress.CompletedInUnit(ctx, userID, ids)
		if err != nil {
			return 0, false, err
		}
		return metric, len(ids) > 0 && metric == len(ids), nil

	case models.CriteriaStudyTime:
		metric, err = s.sessions.TotalStudyMinutes(ctx, userID)
		if err != nil {
			return 0, false, err
		}
		return metric, metric >= a.Threshold, nil

	case models.CriteriaTestScore:
		metric, err = s.scores.BestScore(ctx, userID)
		if err != nil {
			return 0, false, err
		}
		return metric, metric >= a.Threshold, nil

	default:
		// custom rules are evaluated elsewhere; leave the row untouched
		return a.CurrentProgress, false, nil
	}
}

func (s *AchievementService) publishUnlock(ctx context.Context, userID uuid.UUID, a models.Achievement) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":        "achievement_unlocked",
		"achievement": a,
	})
	if err != nil {
		return
	}
	if err := s.pubsub.Publish(ctx, "user_updates:"+userID.String(), payload).Err(); err != nil {
		log.Printf("achievements: failed to publish unlock %s for user %s: %v", a.Code, userID, err)
	}
}

// ConsecutiveDays counts the run of distinct calendar days with at least one
// session, walking backward from today and stopping at the first gap. A user
// with no session today has a streak of zero.
func ConsecutiveDays(dates []time.Time, today time.Time) int {
	expected := truncateToDay(today)
	streak := 0
	for _, d := range dates {
		d = truncateToDay(d)
		if !d.Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
