package auth

import (
	"context"
)

// contextKey is a custom type used for context keys to avoid collisions.
type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller attached to a request context by the
// auth middleware.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// WithIdentity returns a child context carrying the given identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the caller identity from the request context.
// Returns the identity and true if found, otherwise a zero Identity and false.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
