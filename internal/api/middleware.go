package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"chatstream-backend/internal/auth"
	"chatstream-backend/pkg/httputil"

	"github.com/golang-jwt/jwt/v5"
)

// JwtAuthMiddleware verifies the bearer token from the Authorization header
// and injects the caller identity into the request context.
//
// The reserved literal auth.MockToken is a development bypass that resolves
// to the fixed placeholder identity without verification. Anything else must
// be a valid signed token.
func JwtAuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Println("Auth Middleware: Missing Authorization header")
				httputil.RespondError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Printf("Auth Middleware: Malformed Authorization header")
				httputil.RespondError(w, http.StatusUnauthorized, "Malformed Authorization header (Expected: Bearer <token>)")
				return
			}

			tokenString := parts[1]

			if tokenString == auth.MockToken {
				ctx := auth.WithIdentity(r.Context(), auth.MockIdentity)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			identity, err := auth.ParseAccessToken(tokenString, jwtSecret)
			if err != nil {
				log.Printf("Auth Middleware: Error parsing token: %v", err)
				if errors.Is(err, jwt.ErrTokenExpired) {
					httputil.RespondError(w, http.StatusUnauthorized, "Token has expired")
				} else if errors.Is(err, jwt.ErrTokenMalformed) {
					httputil.RespondError(w, http.StatusUnauthorized, "Malformed token")
				} else {
					httputil.RespondError(w, http.StatusUnauthorized, "Invalid token")
				}
				return
			}

			ctx := auth.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
