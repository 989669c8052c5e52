package handlers

import (
	"log"
	"net/http"

	"chatstream-backend/internal/services"
	"chatstream-backend/pkg/httputil"
)

// AuthHandlers handles the Google OAuth redirect pair.
type AuthHandlers struct {
	authService *services.AuthService
}

func NewAuthHandlers(authService *services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// HandleGoogleLogin handles GET /auth/google.
func (h *AuthHandlers) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	url := h.authService.LoginURL()
	log.Printf("[AuthHandlers] Redirecting to Google consent page")
	http.Redirect(w, r, url, http.StatusFound)
}

// HandleGoogleCallback handles GET /auth/google/callback.
func (h *AuthHandlers) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Authorization code required")
		return
	}

	redirect, err := h.authService.HandleCallback(r.Context(), code)
	if err != nil {
		log.Printf("ERROR [AuthHandlers] OAuth callback failed: %v", err)
		http.Redirect(w, r, h.authService.FailureURL(), http.StatusFound)
		return
	}

	http.Redirect(w, r, redirect, http.StatusFound)
}
