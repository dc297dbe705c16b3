package handlers

import (
	"encoding/json"
	"net/http"

	"olymprep-backend/internal/middleware"
	"olymprep-backend/internal/models"
	"olymprep-backend/internal/repository"
	"olymprep-backend/internal/services"
)

type AchievementHandler struct {
	achievements *services.AchievementService
	scores       *repository.TestScoreRepo
}

func NewAchievementHandler(achievements *services.AchievementService, scores *repository.TestScoreRepo) *AchievementHandler {
	return &AchievementHandler{achievements: achievements, scores: scores}
}

func (h *AchievementHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.achievements.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"achievements": list})
}

// Check runs a synchronous evaluation pass. The background worker does the
// same thing after sessions close; this endpoint exists so the client can
// refresh immediately after an action it knows matters.
func (h *AchievementHandler) Check(w http.ResponseWriter, r *http.Request) {
	result, err := h.achievements.Evaluate(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *AchievementHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if fields := validateScoreRequest(req); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	score := &models.TestScore{
		UserID:   userID,
		TestName: req.TestName,
		Score:    req.Score,
		MaxScore: req.MaxScore,
	}
	if err := h.scores.Create(r.Context(), score); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to record score", r))
		return
	}

	result, err := h.achievements.Evaluate(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"score": score,
		"check": result,
	})
}

func (h *AchievementHandler) ListScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.scores.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list scores", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"scores": scores})
}

func validateScoreRequest(req models.SubmitScoreRequest) map[string]string {
	fields := make(map[string]string)
	if req.TestName == "" {
		fields["test_name"] = "Test name is required"
	}
	if req.MaxScore <= 0 {
		fields["max_score"] = "Max score must be positive"
	}
	if req.Score < 0 || (req.MaxScore > 0 && req.Score > req.MaxScore) {
		fields["score"] = "Score must be between 0 and max score"
	}
	return fields
}
