package domain

import (
	"context"
	"errors"
)

// Permission strings carried by a caller's token.
const (
	// PermissionPostToClosedPeriod bypasses the closed-period check when
	// posting. It never bypasses the period-existence check.
	PermissionPostToClosedPeriod = "accounting:post_to_closed_period"
)

// User is the authenticated caller of a command: an identity within a
// tenant plus capability strings.
type User struct {
	ID          string
	TenantID    string
	Email       string
	Permissions []string
}

// HasPermission reports whether the user holds the given capability.
func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type userContextKey struct{}

// ContextWithUser attaches the authenticated user to the context.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated user, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok
}
