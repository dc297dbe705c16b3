package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"olymprep-backend/internal/middleware"
	"olymprep-backend/internal/models"
	"olymprep-backend/internal/repository"
	"olymprep-backend/internal/services"
)

type ContentHandler struct {
	contentRepo *repository.ContentRepo
	userRepo    *repository.UserRepo
	access      *services.AccessService
	metadata    *services.VideoMetadataService
	assist      *services.AssistService
}

func NewContentHandler(
	contentRepo *repository.ContentRepo,
	userRepo *repository.UserRepo,
	access *services.AccessService,
	metadata *services.VideoMetadataService,
	assist *services.AssistService,
) *ContentHandler {
	return &ContentHandler{
		contentRepo: contentRepo,
		userRepo:    userRepo,
		access:      access,
		metadata:    metadata,
		assist:      assist,
	}
}

func (h *ContentHandler) currentUser(r *http.Request) (*models.User, error) {
	return h.userRepo.GetByID(r.Context(), middleware.GetUserID(r.Context()))
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Invalid session", r))
		return
	}

	// Students without a subscription only see the public catalog.
	publicOnly := user.Role == models.RoleStudent && user.SubscriptionStatus != models.SubscriptionActive
	contents, err := h.contentRepo.List(r.Context(), publicOnly)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list contents", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"contents": contents})
}

func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	contentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid content ID", r))
		return
	}

	content, err := h.contentRepo.GetByID(r.Context(), contentID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Content not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"content": content})
}

// Open resolves a content item into its viewing payload (embed URL, stream URL
// or external link).
func (h *ContentHandler) Open(w http.ResponseWriter, r *http.Request) {
	contentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid content ID", r))
		return
	}

	user, err := h.currentUser(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Invalid session", r))
		return
	}

	result, err := h.access.Open(r.Context(), user, contentID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Stream proxies PDF bytes. Token-gated: auth middleware does not run here,
// the signed stream token is the credential.
func (h *ContentHandler) Stream(w http.ResponseWriter, r *http.Request) {
	contentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid content ID", r))
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Invalid access", r))
		return
	}

	if err := h.access.StreamPDF(r.Context(), w, contentID, token); err != nil {
		handleServiceError(w, r, err)
	}
}

func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if fields := validateContentRequest(req); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	content := &models.Content{
		Unit:      req.Unit,
		Chapter:   req.Chapter,
		Topic:     req.Topic,
		Concept:   req.Concept,
		Title:     req.Title,
		Kind:      req.Kind,
		SourceURL: req.SourceURL,
		Sequence:  req.Sequence,
		IsPublic:  req.IsPublic,
		CreatedBy: middleware.GetUserID(r.Context()),
	}

	h.enrichContent(r, content, req.MirrorPath)

	if err := h.contentRepo.Create(r.Context(), content); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create content", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"content": content})
}

// enrichContent fills provider metadata best-effort: a failed lookup never
// blocks the admin.
func (h *ContentHandler) enrichContent(r *http.Request, content *models.Content, mirrorPath string) {
	switch content.Kind {
	case models.ContentVideo:
		videoID := services.ExtractYouTubeID(content.SourceURL)
		if videoID == "" {
			return
		}
		content.VideoID = &videoID
		title, _, err := h.metadata.Lookup(r.Context(), videoID)
		if err != nil {
			log.Printf("content: metadata lookup failed for %s: %v", videoID, err)
			return
		}
		if content.Title == "" {
			content.Title = title
		}
	case models.ContentPDF:
		if mirrorPath == "" {
			return
		}
		pages, err := services.PDFPageCount(mirrorPath)
		if err != nil {
			log.Printf("content: page count probe failed for %s: %v", mirrorPath, err)
			return
		}
		content.PageCount = &pages
	}
}

func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	contentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid content ID", r))
		return
	}

	content, err := h.contentRepo.GetByID(r.Context(), contentID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Content not found", r))
		return
	}

	var req models.ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	content.Unit = req.Unit
	content.Chapter = req.Chapter
	content.Topic = req.Topic
	content.Concept = req.Concept
	content.Title = req.Title
	content.SourceURL = req.SourceURL
	content.Sequence = req.Sequence
	content.IsPublic = req.IsPublic
	h.enrichContent(r, content, req.MirrorPath)

	if err := h.contentRepo.Update(r.Context(), content); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update content", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"content": content})
}

func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	contentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid content ID", r))
		return
	}

	deleted, err := h.contentRepo.Delete(r.Context(), contentID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete content", r))
		return
	}
	if !deleted {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "Content is referenced by progress records", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Content deleted"})
}

func (h *ContentHandler) CoachNote(w http.ResponseWriter, r *http.Request) {
	contentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid content ID", r))
		return
	}

	content, err := h.contentRepo.GetByID(r.Context(), contentID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Content not found", r))
		return
	}

	note, err := h.assist.CoachNote(r.Context(), content)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"note": note})
}

func validateContentRequest(req models.ContentRequest) map[string]string {
	fields := make(map[string]string)
	if req.Title == "" {
		fields["title"] = "Title is required"
	}
	if req.Unit == "" {
		fields["unit"] = "Unit is required"
	}
	switch req.Kind {
	case models.ContentVideo, models.ContentPDF, models.ContentLink, models.ContentTestPaper:
	default:
		fields["kind"] = "Kind must be video, pdf, link or testpaper_link"
	}
	if req.SourceURL == "" {
		fields["source_url"] = "Source URL is required"
	}
	return fields
}
