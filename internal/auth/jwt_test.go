package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	id := Identity{UserID: "google-sub-123", Email: "a@example.com", Name: "A"}

	token, err := NewAccessToken(id, "secret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := ParseAccessToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewAccessToken(Identity{UserID: "u1"}, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "other-secret")
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := NewAccessToken(Identity{UserID: "u1"}, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "secret")
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseAccessToken("not-a-token", "secret")
	assert.Error(t, err)
}
