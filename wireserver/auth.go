package wireserver

import (
	"context"

	"github.com/arrowpg/arrowpg/session"
)

// auth implements psql-wire's ClearTextPassword callback shape, the same
// signature the teacher's (*PostgreServer).auth has. A nil authSrc accepts
// any credentials (cmd/arrowpg-server always supplies one); otherwise it
// delegates to auth.Source.Authenticate, following spec.md §4.5's
// accept/reject table. Once a connection is accepted, the per-connection
// Session is created here and carried forward in ctx for
// sessionMiddleware and every later ParseFn call to find.
func (s *Server) auth(ctx context.Context, database, username, password string) (context.Context, bool, error) {
	if s.authSrc != nil && !s.authSrc.Authenticate(username, password) {
		s.logger.Printf("authentication failed for user %q", username)
		return ctx, false, nil
	}

	sess := session.New(username)
	sess.Set("database", database)
	ctx = withSession(ctx, sess)

	s.logger.Printf("successful authentication for user %q", username)
	return ctx, true, nil
}
