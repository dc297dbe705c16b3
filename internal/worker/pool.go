package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"olymprep-backend/internal/services"
)

// Pool drains the achievement evaluation queue. Session closes and progress
// updates enqueue a user id; workers re-evaluate that user's locked
// achievements off the request path.
type Pool struct {
	redis        *redis.Client
	achievements *services.AchievementService
	workerCount  int
	stopChan     chan struct{}
}

func NewPool(redisClient *redis.Client, achievements *services.AchievementService, workerCount int) *Pool {
	return &Pool{
		redis:        redisClient,
		achievements: achievements,
		workerCount:  workerCount,
		stopChan:     make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	log.Printf("Started %d achievement worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BRPOP with 30s timeout so the stop channel gets checked
		result, err := p.redis.BRPop(ctx, 30*time.Second, services.AchievementQueueKey).Result()
		if err != nil {
			continue
		}
		if len(result) < 2 {
			continue
		}

		var job struct {
			UserID uuid.UUID `json:"user_id"`
		}
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse achievement job: %v", id, err)
			continue
		}

		// Coalesce bursts: a session close often enqueues several checks for
		// the same user in quick succession, one evaluation covers them all.
		lockKey := "achievement_lock:" + job.UserID.String()
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Second).Result()
		if err != nil || !locked {
			continue
		}

		if _, err := p.achievements.Evaluate(ctx, job.UserID); err != nil {
			// Evaluation is retried on the next enqueue, never propagated.
			log.Printf("Worker %d: achievement evaluation failed for user %s: %v", id, job.UserID, err)
		}

		p.redis.Del(ctx, lockKey)
	}
}
