package sessiongate

import (
	"context"

	"github.com/google/uuid"
)

type userKeyType struct{}

var userKey = userKeyType{}

// WithUser returns a new context containing the resolved user.
//
// The gate calls it on pass-through; adapters for other routers use it to
// keep the request context consistent.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext extracts the resolved user from the context.
//
// The boolean return value is false if the request is unauthenticated or no
// user has been attached.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userKey).(*User)
	if !ok || u == nil {
		return nil, false
	}
	return u, true
}

// UserIDFromContext extracts the authenticated user's ID from the context.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	u, ok := UserFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return u.ID, true
}

// RolesFromContext extracts the authenticated user's roles from the context.
func RolesFromContext(ctx context.Context) ([]string, bool) {
	u, ok := UserFromContext(ctx)
	if !ok {
		return nil, false
	}
	return u.Roles, true
}

// IsAuthenticated reports whether the context contains a resolved user.
func IsAuthenticated(ctx context.Context) bool {
	_, ok := UserFromContext(ctx)
	return ok
}
