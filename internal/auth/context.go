package auth

import (
	"context"

	"github.com/arganhq/argan/internal/user"
)

// Identity is the read-only authenticated-identity record attached to the
// request context by the middleware. It is the only way handlers learn who
// is calling.
type Identity struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            user.Role `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
}

type contextKey int

const identityContextKey contextKey = iota

// ContextWithIdentity returns a new context carrying the given identity.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext extracts the identity from the context, or nil if not
// present.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey).(*Identity)
	return id
}
