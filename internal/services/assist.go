package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"olymprep-backend/internal/models"
)

// AssistService drafts a short coach's note for a content item. Purely an
// admin convenience; disabled when no API key is configured.
type AssistService struct {
	client *genai.Client
	model  *genai.GenerativeModel
	redis  *redis.Client
}

func NewAssistService(apiKey string, redisClient *redis.Client) (*AssistService, error) {
	if apiKey == "" {
		return &AssistService{redis: redisClient}, nil
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.4)

	return &AssistService{client: client, model: model, redis: redisClient}, nil
}

func (s *AssistService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *AssistService) Enabled() bool { return s.model != nil }

// CoachNote returns a one-paragraph study note for the content, cached for a day.
func (s *AssistService) CoachNote(ctx context.Context, content *models.Content) (string, error) {
	if !s.Enabled() {
		return "", &ValidationError{Fields: map[string]string{"assist": "Coach notes are not configured"}}
	}

	cacheKey := "coach_note:" + content.ID.String()
	if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
		return cached, nil
	}

	prompt := fmt.Sprintf(
		"Write one short encouraging study note (max 80 words) for a mathematics-olympiad student about to study %q (%s, unit: %s, topic: %s). Mention one concrete thing to watch for.",
		content.Title, content.Kind, content.Unit, content.Topic,
	)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &UpstreamError{Message: "Note generation failed"}
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}

	note := strings.TrimSpace(sb.String())
	if note == "" {
		return "", &UpstreamError{Message: "Note generation failed"}
	}

	s.redis.Set(ctx, cacheKey, note, 24*time.Hour)
	return note, nil
}
