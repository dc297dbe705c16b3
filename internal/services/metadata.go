package services

import (
	"context"
	"fmt"

	yt "github.com/kkdai/youtube/v2"
)

// VideoMetadataService fetches title and duration for a video without needing
// an API key. Used on the admin side when registering video content; failures
// are tolerated (the admin's own title wins anyway).
type VideoMetadataService struct {
	client *yt.Client
}

func NewVideoMetadataService() *VideoMetadataService {
	return &VideoMetadataService{client: &yt.Client{}}
}

func (s *VideoMetadataService) Lookup(ctx context.Context, videoID string) (title string, durationSec int, err error) {
	video, err := s.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch video metadata: %w", err)
	}
	return video.Title, int(video.Duration.Seconds()), nil
}
