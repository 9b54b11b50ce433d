package shared

import "context"

type sessionContextKey struct{}

type userContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithUser stores the profile resolved by the session guard.
func ContextWithUser(ctx context.Context, user UserProfile) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the guard-resolved profile, falling back to the
// session record.
func UserFromContext(ctx context.Context) (UserProfile, bool) {
	if user, ok := ctx.Value(userContextKey{}).(UserProfile); ok {
		return user, true
	}
	return SessionFromContext(ctx).GetUser()
}
