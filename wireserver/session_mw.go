package wireserver

import (
	"context"

	wire "github.com/jeroenrinzema/psql-wire"

	"github.com/arrowpg/arrowpg/session"
)

// sessionMiddleware runs after auth and before the first ParseFn call for a
// connection, matching the teacher's (*PostgreServer).session: it logs the
// remote address and, as a defensive fallback for an auth strategy that
// never ran (no AuthSource configured and psql-wire skips ClearTextPassword
// entirely), makes sure a Session is always present.
func (s *Server) sessionMiddleware(ctx context.Context) (context.Context, error) {
	s.logger.Printf("new session established: %s", wire.RemoteAddress(ctx))
	if sessionFromContext(ctx) == nil {
		ctx = withSession(ctx, session.New(""))
	}
	return ctx, nil
}

// terminateConn logs connection teardown, matching the teacher's
// (*PostgreServer).terminateConn. Session state lives only in ctx/the
// closed connection's goroutine, so there is nothing further to release.
func (s *Server) terminateConn(ctx context.Context) error {
	s.logger.Printf("session terminated: %s", wire.RemoteAddress(ctx))
	return nil
}
