package auth

import "context"

type ctxKey string

const userKey ctxKey = "userClaims"

type Claims struct {
	Subject string
	JWTID   string
}

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, userKey, c)
}

func FromContext(ctx context.Context) Claims {
	if v, ok := ctx.Value(userKey).(Claims); ok {
		return v
	}
	return Claims{}
}

// Subject returns the authenticated owner id, or "" when unauthenticated.
func Subject(ctx context.Context) string {
	return FromContext(ctx).Subject
}
