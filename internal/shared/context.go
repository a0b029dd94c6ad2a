package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession attaches the loaded session for downstream handlers.
// The session middleware is the only writer.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the request's session. A nil result means the
// request is anonymous: no cookie, an expired session, or a route mounted
// outside the session middleware.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
