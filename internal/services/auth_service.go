package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"

	"chatstream-backend/internal/auth"
	"chatstream-backend/internal/models"
	"chatstream-backend/internal/store"
)

// AuthService handles the Google OAuth login flow and session token issuance.
type AuthService struct {
	store           store.Store
	google          *auth.GoogleClient
	jwtSecret       string
	tokenExpiration time.Duration
	clientURL       string
}

func NewAuthService(store store.Store, google *auth.GoogleClient, jwtSecret string, tokenExpiration time.Duration, clientURL string) *AuthService {
	return &AuthService{
		store:           store,
		google:          google,
		jwtSecret:       jwtSecret,
		tokenExpiration: tokenExpiration,
		clientURL:       clientURL,
	}
}

// LoginURL returns the Google consent page to redirect the browser to.
func (s *AuthService) LoginURL() string {
	return s.google.AuthURL("login")
}

// HandleCallback completes the OAuth flow: exchanges the code, records the
// user, issues a session token, and builds the SPA redirect URL carrying the
// token and public profile.
func (s *AuthService) HandleCallback(ctx context.Context, code string) (string, error) {
	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("google exchange failed: %w", err)
	}

	user := &models.User{
		ID:      profile.ID,
		Email:   profile.Email,
		Name:    profile.Name,
		Picture: profile.Picture,
	}
	// Recording the login is best-effort; a broken store must not block
	// sign-in.
	if err := s.store.UpsertUser(ctx, user); err != nil {
		log.Printf("WARN [AuthService] Failed to record login for user %s: %v", user.ID, err)
	}

	identity := auth.Identity{UserID: profile.ID, Email: profile.Email, Name: profile.Name}
	token, err := auth.NewAccessToken(identity, s.jwtSecret, s.tokenExpiration)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}

	publicUser, err := json.Marshal(models.AuthenticatedUser{
		ID:      profile.ID,
		Email:   profile.Email,
		Name:    profile.Name,
		Picture: profile.Picture,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal user payload: %w", err)
	}

	redirect := fmt.Sprintf("%s/auth/callback?token=%s&user=%s",
		s.clientURL, url.QueryEscape(token), url.QueryEscape(string(publicUser)))
	return redirect, nil
}

// FailureURL is where the browser lands when the OAuth flow fails.
func (s *AuthService) FailureURL() string {
	return s.clientURL + "/?error=auth_failed"
}
