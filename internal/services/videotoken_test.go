package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestVideoToken_RoundTrip(t *testing.T) {
	issuer := NewVideoTokenIssuer("test-secret", 2*time.Hour)
	userID := uuid.New()
	issued := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	token, err := issuer.issueAt("dQw4w9WgXcQ", userID, "student", issued)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := issuer.verifyAt(token, issued.Add(time.Hour))
	if err != nil {
		t.Fatalf("verify failed one hour after issue: %v", err)
	}
	if claims.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("Expected video ID dQw4w9WgXcQ, got %q", claims.VideoID)
	}
	if claims.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, claims.UserID)
	}
	if claims.UserRole != "student" {
		t.Errorf("Expected role student, got %q", claims.UserRole)
	}
}

func TestVideoToken_Expiry(t *testing.T) {
	issuer := NewVideoTokenIssuer("test-secret", 2*time.Hour)
	issued := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	token, err := issuer.issueAt("dQw4w9WgXcQ", uuid.New(), "student", issued)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	tests := []struct {
		name    string
		at      time.Time
		wantErr bool
	}{
		{"valid just after issue", issued.Add(time.Minute), false},
		{"valid near the end of the window", issued.Add(119 * time.Minute), false},
		{"expired one hour past the window", issued.Add(3 * time.Hour), true},
		{"expired long after", issued.Add(48 * time.Hour), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := issuer.verifyAt(token, tc.at)
			if tc.wantErr && err != ErrInvalidAccess {
				t.Errorf("Expected ErrInvalidAccess, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected valid token, got %v", err)
			}
		})
	}
}

func TestVideoToken_Tampered(t *testing.T) {
	issuer := NewVideoTokenIssuer("test-secret", 2*time.Hour)
	other := NewVideoTokenIssuer("different-secret", 2*time.Hour)
	issued := time.Now()

	token, err := other.issueAt("dQw4w9WgXcQ", uuid.New(), "student", issued)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := issuer.verifyAt(token, issued.Add(time.Minute)); err != ErrInvalidAccess {
		t.Errorf("Expected ErrInvalidAccess for token signed with another key, got %v", err)
	}

	if _, err := issuer.verifyAt("not-a-token", issued); err != ErrInvalidAccess {
		t.Errorf("Expected ErrInvalidAccess for garbage token, got %v", err)
	}
}

func TestVideoToken_FutureIssueRejected(t *testing.T) {
	issuer := NewVideoTokenIssuer("test-secret", 2*time.Hour)
	issued := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	token, err := issuer.issueAt("dQw4w9WgXcQ", uuid.New(), "student", issued)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	// Verification clock sits well before the embedded issue time.
	if _, err := issuer.verifyAt(token, issued.Add(-time.Hour)); err != ErrInvalidAccess {
		t.Errorf("Expected ErrInvalidAccess for future-dated token, got %v", err)
	}
}
