package wireserver

import (
	"context"

	"github.com/arrowpg/arrowpg/session"
)

type sessionCtxKey struct{}

// withSession stashes sess into ctx, the same context.WithValue idiom the
// teacher's auth callback uses to carry its Logfire read token.
func withSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, sess)
}

// sessionFromContext returns the Session auth or sessionMiddleware stashed
// into ctx, or nil if neither ran (should not happen once a Server is
// wired up through NewServer).
func sessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionCtxKey{}).(*session.Session)
	return sess
}
