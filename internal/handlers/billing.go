package handlers

import (
	"encoding/json"
	"net/http"

	"olymprep-backend/internal/middleware"
	"olymprep-backend/internal/repository"
	"olymprep-backend/internal/services"
)

type BillingHandler struct {
	billing  *services.BillingService
	userRepo *repository.UserRepo
}

func NewBillingHandler(billing *services.BillingService, userRepo *repository.UserRepo) *BillingHandler {
	return &BillingHandler{billing: billing, userRepo: userRepo}
}

type checkoutRequest struct {
	Plan string `json:"plan"`
}

func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Invalid session", r))
		return
	}

	token, redirectURL, err := h.billing.CreateCheckout(r.Context(), user, req.Plan)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"token":        token,
		"redirect_url": redirectURL,
	})
}

// Notification receives the payment processor's webhook. It is unauthenticated
// by necessity; the signature inside the payload is the credential.
func (h *BillingHandler) Notification(w http.ResponseWriter, r *http.Request) {
	var n services.PaymentNotification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid notification body", r))
		return
	}

	if err := h.billing.HandleNotification(r.Context(), n); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}
