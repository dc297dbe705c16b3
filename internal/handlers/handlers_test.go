package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"olymprep-backend/internal/models"
	"olymprep-backend/internal/services"
)

// ─── Shared Helper Tests ───

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	writeJSON(rr, http.StatusCreated, map[string]string{"message": "ok"})

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", rr.Header().Get("Content-Type"))
	}

	var result map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["message"] != "ok" {
		t.Errorf("Expected message 'ok', got %q", result["message"])
	}
}

func TestErrorResp_CarriesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contents", nil)
	req.Header.Set("X-Request-ID", "req-123")

	resp := errorResp("NOT_FOUND", "Content not found", req)

	if resp.Error.Code != "NOT_FOUND" {
		t.Errorf("Expected code NOT_FOUND, got %q", resp.Error.Code)
	}
	if resp.Error.RequestID != "req-123" {
		t.Errorf("Expected request ID 'req-123', got %q", resp.Error.RequestID)
	}
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"email": "bad"}}, http.StatusBadRequest},
		{"conflict", &services.ConflictError{Message: "exists"}, http.StatusConflict},
		{"not found", &services.NotFoundError{Message: "missing"}, http.StatusNotFound},
		{"unauthorized", &services.UnauthorizedError{Message: "nope"}, http.StatusUnauthorized},
		{"forbidden", &services.ForbiddenError{Message: "denied"}, http.StatusForbidden},
		{"upstream", &services.UpstreamError{Message: "provider down"}, http.StatusServiceUnavailable},
		{"data", &services.DataError{Message: "broken reference"}, http.StatusUnprocessableEntity},
		{"unknown", json.Unmarshal([]byte("{"), &struct{}{}), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			handleServiceError(rr, req, tc.err)

			if rr.Code != tc.expectedCode {
				t.Errorf("Expected status %d, got %d", tc.expectedCode, rr.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error body: %v", err)
			}
			if resp.Error.Code == "" {
				t.Error("Expected a machine-readable error code")
			}
		})
	}
}

// ─── Validation Tests ───

func TestValidateContentRequest(t *testing.T) {
	valid := models.ContentRequest{
		Unit:      "Algebra",
		Title:     "Polynomial identities",
		Kind:      models.ContentVideo,
		SourceURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}

	tests := []struct {
		name   string
		mutate func(r *models.ContentRequest)
		fields []string
	}{
		{"valid", func(r *models.ContentRequest) {}, nil},
		{"missing title", func(r *models.ContentRequest) { r.Title = "" }, []string{"title"}},
		{"missing unit", func(r *models.ContentRequest) { r.Unit = "" }, []string{"unit"}},
		{"bad kind", func(r *models.ContentRequest) { r.Kind = "podcast" }, []string{"kind"}},
		{"missing source", func(r *models.ContentRequest) { r.SourceURL = "" }, []string{"source_url"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)

			fields := validateContentRequest(req)
			if len(fields) != len(tc.fields) {
				t.Fatalf("Expected %d field errors, got %d: %v", len(tc.fields), len(fields), fields)
			}
			for _, f := range tc.fields {
				if fields[f] == "" {
					t.Errorf("Expected an error for field %q", f)
				}
			}
		})
	}
}

func TestValidateScoreRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     models.SubmitScoreRequest
		wantErr bool
	}{
		{"valid", models.SubmitScoreRequest{TestName: "Mock IMO", Score: 35, MaxScore: 42}, false},
		{"full marks", models.SubmitScoreRequest{TestName: "Mock IMO", Score: 42, MaxScore: 42}, false},
		{"missing name", models.SubmitScoreRequest{Score: 35, MaxScore: 42}, true},
		{"negative score", models.SubmitScoreRequest{TestName: "Mock", Score: -1, MaxScore: 42}, true},
		{"score over max", models.SubmitScoreRequest{TestName: "Mock", Score: 50, MaxScore: 42}, true},
		{"zero max", models.SubmitScoreRequest{TestName: "Mock", Score: 0, MaxScore: 0}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fields := validateScoreRequest(tc.req)
			if tc.wantErr && len(fields) == 0 {
				t.Error("Expected field errors, got none")
			}
			if !tc.wantErr && len(fields) > 0 {
				t.Errorf("Expected no field errors, got %v", fields)
			}
		})
	}
}
