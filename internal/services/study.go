package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"olymprep-backend/internal/models"
	"olymprep-backend/internal/repository"
)

// AchievementQueueKey is the redis list drained by the worker pool.
const AchievementQueueKey = "achievements:queue"

type achievementJob struct {
	UserID string `json:"user_id"`
}

// The recorder talks to storage through narrow interfaces, satisfied by the
// pgx repositories in production and by fakes in tests.
type sessionStore interface {
	CloseActive(ctx context.Context, userID uuid.UUID) error
	Start(ctx context.Context, s *models.StudySession) error
	Heartbeat(ctx context.Context, sessionID, userID uuid.UUID, engagement *float64, ranges json.RawMessage) error
	Close(ctx context.Context, sessionID, userID uuid.UUID) (*models.StudySession, bool, error)
	GetActive(ctx context.Context, userID uuid.UUID) (*models.StudySession, error)
}

type progressWriter interface {
	Touch(ctx context.Context, userID, contentID uuid.UUID) error
	AddTime(ctx context.Context, userID, contentID uuid.UUID, minutes int) error
}

type checkEnqueuer interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// SessionService is the session recorder: it owns the one-active-session-per-
// user invariant and writes closed durations through to progress.
type SessionService struct {
	sessions sessionStore
	progress progressWriter
	redis    checkEnqueuer
}

func NewSessionService(sessions *repository.StudySessionRepo, progress *repository.ProgressRepo, redisClient *redis.Client) *SessionService {
	return &SessionService{sessions: sessions, progress: progress, redis: redisClient}
}

// Start opens a session for (user, content). Any session still active for the
// user, including a stale one from a killed browser, is finalized first with
// its duration folded into progress.
func (s *SessionService) Start(ctx context.Context, userID, contentID uuid.UUID, activityType string) (*models.StudySession, error) {
	if activityType != models.ContentVideo && activityType != models.ContentPDF {
		return nil, &ValidationError{Fields: map[string]string{"activity_type": "activity_type must be video or pdf"}}
	}

	if active, err := s.sessions.GetActive(ctx, userID); err == nil {
		s.finalize(ctx, active.ID, userID)
	}
	// Safety net: one atomic statement closes anything the read above missed.
	if err := s.sessions.CloseActive(ctx, userID); err != nil {
		return nil, err
	}

	session := &models.StudySession{
		UserID:       userID,
		ContentID:    contentID,
		ActivityType: activityType,
	}
	if err := s.sessions.Start(ctx, session); err != nil {
		return nil, err
	}

	if err := s.progress.Touch(ctx, userID, contentID); err != nil {
		log.Printf("study: failed to touch progress for user %s content %s: %v", userID, contentID, err)
	}

	return session, nil
}

// Heartbeat records engagement without closing the session. Losing a beat is
// preferable to blocking the viewer, so failures are logged and swallowed.
func (s *SessionService) Heartbeat(ctx context.Context, sessionID, userID uuid.UUID, engagement *float64, ranges json.RawMessage) {
	if err := s.sessions.Heartbeat(ctx, sessionID, userID, engagement, ranges); err != nil {
		log.Printf("study: heartbeat failed for session %s: %v", sessionID, err)
	}
}

// Close finalizes the session and returns it with the computed duration.
func (s *SessionService) Close(ctx context.Context, sessionID, userID uuid.UUID) (*models.StudySession, error) {
	session, err := s.finalize(ctx, sessionID, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &NotFoundError{Message: "Session not found"}
		}
		return nil, err
	}
	return session, nil
}

func (s *SessionService) finalize(ctx context.Context, sessionID, userID uuid.UUID) (*models.StudySession, error) {
	session, wasActive, err := s.sessions.Close(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	// A repeated close returns the stored row untouched; folding its duration
	// into progress again would count the time twice.
	if wasActive {
		if err := s.progress.AddTime(ctx, userID, session.ContentID, session.DurationMinutes); err != nil {
			log.Printf("study: failed to add %d min to progress for user %s content %s: %v",
				session.DurationMinutes, userID, session.ContentID, err)
		}
		s.enqueueAchievementCheck(ctx, userID)
	}
	return session, nil
}

// enqueueAchievementCheck hands evaluation to the worker pool. Best-effort: a
// queue failure never blocks the close.
func (s *SessionService) enqueueAchievementCheck(ctx context.Context, userID uuid.UUID) {
	payload, _ := json.Marshal(achievementJob{UserID: userID.String()})
	if err := s.redis.LPush(ctx, AchievementQueueKey, payload).Err(); err != nil {
		log.Printf("study: failed to enqueue achievement check for user %s: %v", userID, err)
	}
}
