package auth

import (
	"context"
)

type ctxKey string

const userKey ctxKey = "userClaims"

type Claims struct {
	UserID uint
	Role   string
	JWTID  string
}

func (c Claims) IsAdmin() bool { return c.Role == RoleAdmin }

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, userKey, c)
}

func FromContext(ctx context.Context) Claims {
	if v, ok := ctx.Value(userKey).(Claims); ok {
		return v
	}
	return Claims{}
}

// UserID returns the authenticated user's id, 0 when unauthenticated.
func UserID(ctx context.Context) uint {
	return FromContext(ctx).UserID
}
