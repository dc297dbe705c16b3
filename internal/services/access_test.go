package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"olymprep-backend/internal/models"
)

func TestExtractYouTubeID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short URL", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed URL", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts URL", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch URL with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"not a video URL", "https://example.com/lecture", ""},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractYouTubeID(tc.url); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestExtractDriveFileID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"file path form", "https://drive.google.com/file/d/1AbCdEfGhIjKlMnOp/view", "1AbCdEfGhIjKlMnOp"},
		{"open with id param", "https://drive.google.com/open?id=1AbCdEfGhIjKlMnOp", "1AbCdEfGhIjKlMnOp"},
		{"uc export form", "https://drive.google.com/uc?export=download&id=1AbCdEfGhIjKlMnOp", "1AbCdEfGhIjKlMnOp"},
		{"not a drive URL", "https://example.com/paper.pdf", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractDriveFileID(tc.url); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestDecideVideoAccess(t *testing.T) {
	tests := []struct {
		name       string
		privacy    string
		embeddable bool
		accessible bool
	}{
		{"public and embeddable", "public", true, true},
		{"unlisted and embeddable", "unlisted", true, true},
		{"private", "private", true, false},
		{"public but embedding disabled", "public", false, false},
		{"private and embedding disabled", "private", false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			access := DecideVideoAccess("dQw4w9WgXcQ", tc.privacy, tc.embeddable)
			if access.Accessible != tc.accessible {
				t.Errorf("Expected accessible=%v, got %v", tc.accessible, access.Accessible)
			}
			if !tc.accessible && access.Reason == "" {
				t.Error("Expected a reason for inaccessible video")
			}
			if tc.accessible && access.Reason != "" {
				t.Errorf("Expected no reason for accessible video, got %q", access.Reason)
			}
		})
	}
}

func TestBuildEmbedURL(t *testing.T) {
	url := BuildEmbedURL("dQw4w9WgXcQ", "tok123")

	if !strings.HasPrefix(url, "https://www.youtube.com/embed/dQw4w9WgXcQ?") {
		t.Errorf("Unexpected embed URL prefix: %s", url)
	}
	for _, param := range []string{"rel=0", "modestbranding=1", "disablekb=1", "access_token=tok123"} {
		if !strings.Contains(url, param) {
			t.Errorf("Embed URL missing %s: %s", param, url)
		}
	}
}

type fakeContentGetter struct {
	content *models.Content
}

func (f *fakeContentGetter) GetByID(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	if f.content == nil || f.content.ID != id {
		return nil, errors.New("no rows")
	}
	return f.content, nil
}

type fakeAttemptMarker struct {
	marked [][2]uuid.UUID
}

func (f *fakeAttemptMarker) MarkAttempted(ctx context.Context, userID, contentID uuid.UUID) {
	f.marked = append(f.marked, [2]uuid.UUID{userID, contentID})
}

func TestOpen_ExternalLinkMarksAttempted(t *testing.T) {
	tests := []struct {
		name string
		kind string
	}{
		{"link", models.ContentLink},
		{"test paper link", models.ContentTestPaper},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			content := &models.Content{
				ID:        uuid.New(),
				Kind:      tc.kind,
				SourceURL: "https://example.com/problem-set",
				IsPublic:  true,
			}
			marker := &fakeAttemptMarker{}
			svc := &AccessService{contents: &fakeContentGetter{content: content}, progress: marker}
			user := &models.User{ID: uuid.New(), Role: models.RoleStudent}

			result, err := svc.Open(context.Background(), user, content.ID)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if result.Mode != "external" {
				t.Errorf("Expected mode external, got %q", result.Mode)
			}
			if result.URL != content.SourceURL {
				t.Errorf("Expected URL %q, got %q", content.SourceURL, result.URL)
			}
			if len(marker.marked) != 1 {
				t.Fatalf("Expected 1 attempted mark, got %d", len(marker.marked))
			}
			if marker.marked[0] != [2]uuid.UUID{user.ID, content.ID} {
				t.Errorf("Marked wrong pair: %v", marker.marked[0])
			}
		})
	}
}

func TestOpen_VideoDoesNotMarkAttempted(t *testing.T) {
	content := &models.Content{
		ID:        uuid.New(),
		Kind:      models.ContentVideo,
		SourceURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		IsPublic:  true,
	}
	marker := &fakeAttemptMarker{}
	issuer := NewVideoTokenIssuer("test-secret", 2*time.Hour)
	svc := &AccessService{contents: &fakeContentGetter{content: content}, progress: marker, tokens: issuer}
	user := &models.User{ID: uuid.New(), Role: models.RoleStudent}

	// No provider client and not strict: the check is skipped and the video opens.
	result, err := svc.Open(context.Background(), user, content.ID)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if result.Mode != "video" {
		t.Errorf("Expected mode video, got %q", result.Mode)
	}
	if len(marker.marked) != 0 {
		t.Errorf("Video open must not mark progress attempted, got %d marks", len(marker.marked))
	}
}

func TestCheckVideoAccess_NoProvider(t *testing.T) {
	t.Run("fails closed in strict mode", func(t *testing.T) {
		svc := &AccessService{strict: true}
		_, err := svc.CheckVideoAccess(context.Background(), "dQw4w9WgXcQ")
		var upstream *UpstreamError
		if !errors.As(err, &upstream) {
			t.Fatalf("Expected UpstreamError, got %v", err)
		}
	})

	t.Run("skips the check otherwise", func(t *testing.T) {
		svc := &AccessService{}
		access, err := svc.CheckVideoAccess(context.Background(), "dQw4w9WgXcQ")
		if err != nil {
			t.Fatalf("CheckVideoAccess failed: %v", err)
		}
		if !access.Accessible || !access.Embeddable {
			t.Errorf("Expected accessible fallback, got %+v", access)
		}
	})
}
