package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	drive "google.golang.org/api/drive/v3"
	youtube "google.golang.org/api/youtube/v3"

	"olymprep-backend/internal/models"
	"olymprep-backend/internal/repository"
)

var (
	youtubeIDRegex   = regexp.MustCompile(`(?:youtube\.com/(?:watch\?v=|embed/|shorts/)|youtu\.be/)([\w-]{11})`)
	driveFileIDRegex = regexp.MustCompile(`drive\.google\.com/(?:file/d/([\w-]+)|.*[?&]id=([\w-]+))`)
)

const videoMetaCacheTTL = 10 * time.Minute

type contentGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Content, error)
}

type attemptMarker interface {
	MarkAttempted(ctx context.Context, userID, contentID uuid.UUID)
}

// AccessService is the content access gateway: it turns stored external
// references into something embeddable or streamable without handing the raw
// source location to the client.
type AccessService struct {
	contents contentGetter
	progress attemptMarker
	tokens   *VideoTokenIssuer
	yt       *youtube.Service // nil when no API key is configured
	drive    *drive.Service   // nil when no API key is configured
	redis    *redis.Client
	strict   bool // refuse to serve videos when the provider check is unavailable
}

func NewAccessService(
	contents *repository.ContentRepo,
	progress *ProgressService,
	tokens *VideoTokenIssuer,
	yt *youtube.Service,
	driveSvc *drive.Service,
	redisClient *redis.Client,
	strict bool,
) *AccessService {
	return &AccessService{
		contents: contents,
		progress: progress,
		tokens:   tokens,
		yt:       yt,
		drive:    driveSvc,
		redis:    redisClient,
		strict:   strict,
	}
}

// Open resolves a content item into a viewing payload. External links are
// terminal: the user leaves the system, so the progress row is marked attempted
// right away. Video and PDF stay open until the viewer closes them (tracked by
// study sessions).
func (s *AccessService) Open(ctx context.Context, user *models.User, contentID uuid.UUID) (*models.OpenResult, error) {
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, &NotFoundError{Message: "Content not found"}
	}

	if !content.IsPublic && !user.HasActiveSubscription(time.Now()) {
		return nil, &ForbiddenError{Message: "An active subscription is required for this content"}
	}

	switch content.Kind {
	case models.ContentVideo:
		return s.openVideo(ctx, user, content)
	case models.ContentPDF:
		return s.openPDF(ctx, user, content)
	case models.ContentLink, models.ContentTestPaper:
		// Control leaves the system here; no session is recorded.
		s.progress.MarkAttempted(ctx, user.ID, content.ID)
		return &models.OpenResult{Mode: "external", URL: content.SourceURL}, nil
	default:
		return nil, &DataError{Message: "Content link unavailable"}
	}
}

func (s *AccessService) openVideo(ctx context.Context, user *models.User, content *models.Content) (*models.OpenResult, error) {
	videoID := ""
	if content.VideoID != nil {
		videoID = *content.VideoID
	}
	if videoID == "" {
		videoID = ExtractYouTubeID(content.SourceURL)
	}
	if videoID == "" {
		return nil, &DataError{Message: "Content link unavailable"}
	}

	access, err := s.CheckVideoAccess(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !access.Accessible {
		return nil, &ForbiddenError{Message: access.Reason}
	}

	token, err := s.tokens.Issue(videoID, user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue video token: %w", err)
	}

	return &models.OpenResult{Mode: "video", EmbedURL: BuildEmbedURL(videoID, token)}, nil
}

func (s *AccessService) openPDF(ctx context.Context, user *models.User, content *models.Content) (*models.OpenResult, error) {
	fileID := ExtractDriveFileID(content.SourceURL)
	if fileID == "" {
		return nil, &DataError{Message: "Content link unavailable"}
	}

	// The stream token binds the viewer to this file; the Drive URL itself is
	// never exposed.
	token, err := s.tokens.Issue(fileID, user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue stream token: %w", err)
	}

	streamURL := fmt.Sprintf("/api/v1/contents/%s/stream?token=%s", content.ID, token)
	return &models.OpenResult{Mode: "pdf", StreamURL: streamURL}, nil
}

// CheckVideoAccess asks the provider whether a video may be embedded. Results
// are cached briefly so a classroom of viewers does not hammer the quota.
func (s *AccessService) CheckVideoAccess(ctx context.Context, videoID string) (*models.VideoAccess, error) {
	if s.yt == nil {
		// Production fails closed: an unverified video is never served. Dev
		// setups without a key skip the check so local content still plays.
		if s.strict {
			return nil, &UpstreamError{Message: "Failed to validate video access"}
		}
		log.Printf("access: YouTube API key not configured, skipping status check for %s", videoID)
		return &models.VideoAccess{VideoID: videoID, Accessible: true, Embeddable: true}, nil
	}

	cacheKey := "video_access:" + videoID
	if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
		var access models.VideoAccess
		if json.Unmarshal([]byte(cached), &access) == nil {
			return &access, nil
		}
	}

	resp, err := s.yt.Videos.List([]string{"status"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		log.Printf("access: video metadata lookup failed for %s: %v", videoID, err)
		return nil, &UpstreamError{Message: "Failed to validate video access"}
	}
	if len(resp.Items) == 0 {
		return nil, &DataError{Message: "Content link unavailable"}
	}

	status := resp.Items[0].Status
	access := DecideVideoAccess(videoID, status.PrivacyStatus, status.Embeddable)

	if data, err := json.Marshal(access); err == nil {
		s.redis.Set(ctx, cacheKey, data, videoMetaCacheTTL)
	}

	return access, nil
}

// StreamPDF proxies the Drive bytes for a PDF content item. The token must
// have been minted for this content's file id.
func (s *AccessService) StreamPDF(ctx context.Context, w http.ResponseWriter, contentID uuid.UUID, tokenStr string) error {
	claims, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return &UnauthorizedError{Message: "Invalid access"}
	}

	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return &NotFoundError{Message: "Content not found"}
	}

	fileID := ExtractDriveFileID(content.SourceURL)
	if fileID == "" || fileID != claims.VideoID {
		return &UnauthorizedError{Message: "Invalid access"}
	}

	if s.drive == nil {
		return &UpstreamError{Message: "Content temporarily unavailable"}
	}

	res, err := s.drive.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		log.Printf("access: drive download failed for %s: %v", fileID, err)
		return &UpstreamError{Message: "Content temporarily unavailable"}
	}
	defer res.Body.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline")
	if _, err := io.Copy(w, res.Body); err != nil {
		// Client went away mid-stream; nothing to surface.
		log.Printf("access: stream interrupted for %s: %v", fileID, err)
	}
	return nil
}

func ExtractYouTubeID(url string) string {
	matches := youtubeIDRegex.FindStringSubmatch(url)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

func ExtractDriveFileID(url string) string {
	matches := driveFileIDRegex.FindStringSubmatch(url)
	if len(matches) < 2 {
		return ""
	}
	if matches[1] != "" {
		return matches[1]
	}
	if len(matches) > 2 {
		return matches[2]
	}
	return ""
}

// BuildEmbedURL carries restrictive player parameters: no related videos,
// minimal branding, keyboard controls off, plus the signed access token.
func BuildEmbedURL(videoID, token string) string {
	return fmt.Sprintf("https://www.youtube.com/embed/%s?rel=0&modestbranding=1&disablekb=1&access_token=%s", videoID, token)
}

func DecideVideoAccess(videoID, privacyStatus string, embeddable bool) *models.VideoAccess {
	access := &models.VideoAccess{
		VideoID:       videoID,
		PrivacyStatus: privacyStatus,
		Embeddable:    embeddable,
	}
	if privacyStatus != "public" && privacyStatus != "unlisted" {
		access.Reason = "Video is not publicly viewable"
		return access
	}
	if !embeddable {
		access.Reason = "Video does not allow embedding"
		return access
	}
	access.Accessible = true
	return access
}
