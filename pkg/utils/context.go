package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey  contextKey = "user_id"
	RoleKey    contextKey = "role"
	SessionKey contextKey = "session"
)

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// GetRoleFromContext returns the role claim carried by the access token.
// Privileged routes must not trust it alone, the Admin middleware re-reads the profile.
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok && role != ""
}

func SetUserContext(ctx context.Context, userID uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	ctx = context.WithValue(ctx, RoleKey, role)
	return ctx
}

// GetSessionFromContext returns the session token (jti) of the current request
func GetSessionFromContext(ctx context.Context) (uuid.UUID, bool) {
	token, ok := ctx.Value(SessionKey).(uuid.UUID)
	return token, ok
}

// SetSessionContext stores the session token so logout can revoke it
func SetSessionContext(ctx context.Context, token uuid.UUID) context.Context {
	return context.WithValue(ctx, SessionKey, token)
}
