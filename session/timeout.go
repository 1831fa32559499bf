package session

import (
	"context"
	"strconv"
	"time"
)

// StatementTimeout returns the configured statement_timeout as a
// time.Duration, or 0 if disabled (the GUC's "no timeout" value).
func (s *Session) StatementTimeout() time.Duration {
	v, ok := s.Get(metaStatementTimeout)
	if !ok {
		return 0
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// WithStatementTimeout returns ctx bounded by the session's
// statement_timeout, and a cancel func the caller must always invoke.
// When no timeout is configured it returns ctx unmodified.
func (s *Session) WithStatementTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	d := s.StatementTimeout()
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// RunWithTimeout executes fn under the session's statement_timeout and
// translates a context deadline into SQLSTATE 57014 (query_canceled),
// the code spec.md §6 names for this case.
func RunWithTimeout(ctx context.Context, s *Session, fn func(context.Context) error) error {
	ctx, cancel := s.WithStatementTimeout(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		<-done // let fn observe cancellation and return before we report timeout
		return sqlErr(SQLStateQueryCanceled, "canceling statement due to statement timeout")
	}
}
