package auth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MockToken is the reserved development bearer token. It bypasses JWT
// verification entirely and resolves to MockIdentity.
const MockToken = "mock-token"

// MockIdentity is the fixed placeholder identity used by the development
// bypass.
var MockIdentity = Identity{
	UserID: "mock-user-id",
	Email:  "test@example.com",
	Name:   "Test User",
}

// CustomClaims includes standard JWT claims plus our custom ones.
type CustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// NewAccessToken generates a new JWT access token for the given identity.
func NewAccessToken(id Identity, jwtSecret string, expiration time.Duration) (string, error) {
	claims := CustomClaims{
		UserID: id.UserID,
		Email:  id.Email,
		Name:   id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "chatstream-backend",
			Subject:   id.UserID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		log.Printf("Error signing JWT token for UserID %s: %v", id.UserID, err)
		return "", err
	}

	return signedToken, nil
}

// ParseAccessToken validates a signed token and returns the identity it
// carries.
func ParseAccessToken(tokenString, jwtSecret string) (Identity, error) {
	claims := &CustomClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing algorithm
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid {
		return Identity{}, errors.New("invalid token")
	}
	if claims.UserID == "" {
		return Identity{}, errors.New("invalid token claims (missing user id)")
	}

	return Identity{UserID: claims.UserID, Email: claims.Email, Name: claims.Name}, nil
}
