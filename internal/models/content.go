package models

import (
	"time"

	"github.com/google/uuid"
)

// Content kinds
const (
	ContentVideo     = "video"
	ContentPDF       = "pdf"
	ContentLink      = "link"
	ContentTestPaper = "testpaper_link"
)

type Content struct {
	ID        uuid.UUID `json:"id"`
	Unit      string    `json:"unit"`
	Chapter   string    `json:"chapter"`
	Topic     string    `json:"topic"`
	Concept   string    `json:"concept"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"`
	SourceURL string    `json:"source_url,omitempty"`
	VideoID   *string   `json:"video_id,omitempty"`
	PageCount *int      `json:"page_count,omitempty"`
	Sequence  int       `json:"sequence"`
	IsPublic  bool      `json:"is_public"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type ContentRequest struct {
	Unit       string `json:"unit"`
	Chapter    string `json:"chapter"`
	Topic      string `json:"topic"`
	Concept    string `json:"concept"`
	Title      string `json:"title"`
	Kind       string `json:"kind"`
	SourceURL  string `json:"source_url"`
	MirrorPath string `json:"mirror_path,omitempty"`
	Sequence   int    `json:"sequence"`
	IsPublic   bool   `json:"is_public"`
}

// OpenResult is the gateway's answer to an open request. Exactly one of the
// mode-specific fields is set on success.
type OpenResult struct {
	Mode      string `json:"mode"` // "video" | "pdf" | "external"
	EmbedURL  string `json:"embed_url,omitempty"`
	StreamURL string `json:"stream_url,omitempty"`
	URL       string `json:"url,omitempty"`
}

// VideoAccess is the provider-side verdict for a video.
type VideoAccess struct {
	VideoID       string `json:"video_id"`
	Accessible    bool   `json:"accessible"`
	Reason        string `json:"reason,omitempty"`
	PrivacyStatus string `json:"privacy_status,omitempty"`
	Embeddable    bool   `json:"embeddable"`
}
