package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"chatstream-backend/internal/auth"
	"chatstream-backend/internal/models"
	"chatstream-backend/internal/services"
	"chatstream-backend/pkg/httputil"
)

// EvalHandlers handles the prompt-comparison endpoints.
type EvalHandlers struct {
	evalService *services.EvalService
}

func NewEvalHandlers(evalService *services.EvalService) *EvalHandlers {
	return &EvalHandlers{evalService: evalService}
}

// HandleCompare handles POST /api/eval/compare.
func (h *EvalHandlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserMessage == "" || req.PromptA == "" || req.PromptB == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	result, err := h.evalService.Compare(r.Context(), identity.UserID, req)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to run comparison")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// HandleRate handles POST /api/eval/rate.
func (h *EvalHandlers) HandleRate(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.evalService.Rate(r.Context(), identity.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRating):
			httputil.RespondError(w, http.StatusBadRequest, "Invalid rating data")
		case errors.Is(err, services.ErrEvalResultNotFound):
			httputil.RespondError(w, http.StatusNotFound, "Result not found")
		case errors.Is(err, services.ErrEvalNotOwner):
			httputil.RespondError(w, http.StatusForbidden, "Not authorized to rate this result")
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to save rating")
		}
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.RateResponse{Success: true, Rating: result.Rating})
}

// HandleResults handles GET /api/eval/results.
func (h *EvalHandlers) HandleResults(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	results := h.evalService.Results(r.Context(), identity.UserID)
	httputil.RespondJSON(w, http.StatusOK, results)
}
