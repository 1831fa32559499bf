// Package session implements the per-connection state spec.md §4.6
// describes: the transaction state machine, SET/SHOW handling, prepared
// statement and portal storage, and statement-timeout enforcement. A
// Session belongs to exactly one connection and is never shared.
package session

import (
	"fmt"
	"sync"

	pg_query "github.com/pganalyze/pg_query_go/v5"
)

// TxState is one of the three states spec.md §4.6's transaction state
// machine defines.
type TxState int

const (
	TxIdle TxState = iota
	TxInBlock
	TxFailed
)

// ReadyForQueryByte returns the status byte the wire protocol's
// ReadyForQuery message carries for this state ('I', 'T', or 'E').
func (s TxState) ReadyForQueryByte() byte {
	switch s {
	case TxInBlock:
		return 'T'
	case TxFailed:
		return 'E'
	default:
		return 'I'
	}
}

// PreparedStatement is what Extended Query's Parse step stores under a
// name: the rewritten SQL, its parse tree (for Describe's placeholder
// walk), and the engine's compiled plan. Plan is opaque to session — it
// is produced and consumed entirely by the engine package, which session
// has no need to depend on.
type PreparedStatement struct {
	SQL       string
	Tree      *pg_query.RawStmt
	ParamOIDs []uint32
	Plan      any
}

// Portal is what Bind produces from a PreparedStatement: the statement
// it was bound from, the parameter values supplied, and the result
// column format codes the client requested.
type Portal struct {
	Statement     string // name of the PreparedStatement this was bound from
	BoundPlan     any
	ResultFormats []int16
}

// Session holds everything specific to one TCP connection: metadata
// (user, timezone, statement_timeout_ms, ...), transaction state,
// prepared statements, and portals. None of it is shared with any other
// connection, so access needs no lock of its own — the wire-protocol
// dispatch loop already serializes every message on a connection
// (spec.md §5: "messages are handled strictly sequentially").
type Session struct {
	mu         sync.Mutex // guards Metadata only, for callers reading it from another goroutine (e.g. logging)
	Metadata   map[string]string
	TxState    TxState
	Statements map[string]*PreparedStatement
	Portals    map[string]*Portal
	Username   string
}

// New returns a Session for a newly authenticated connection.
func New(username string) *Session {
	return &Session{
		Metadata:   map[string]string{"user": username},
		TxState:    TxIdle,
		Statements: make(map[string]*PreparedStatement),
		Portals:    make(map[string]*Portal),
		Username:   username,
	}
}

// Get returns a metadata value and whether it was set.
func (s *Session) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.Metadata[key]
	return v, ok
}

// Set stores a metadata value.
func (s *Session) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Metadata[key] = value
}

// SQLStateError carries a PostgreSQL SQLSTATE code alongside a message,
// the shape session's callers need before handing an error to
// wireserver's psqlerr.WithCode/WithSeverity wrapping (see SPEC_FULL.md
// §8's ambient error-handling convention — session builds errors through
// this type rather than ad hoc fmt.Errorf so every SQLSTATE-bearing error
// looks the same regardless of which check produced it).
type SQLStateError struct {
	Code    string // five-character SQLSTATE, e.g. "25P01"
	Message string
	Fatal   bool
}

func (e *SQLStateError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func sqlErr(code, format string, args ...any) *SQLStateError {
	return &SQLStateError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// SQLSTATE codes spec.md §6 names.
const (
	SQLStateInFailedTransaction = "25P01"
	SQLStateInvalidPassword     = "28P01"
	SQLStateInsufficientPriv    = "42501"
	SQLStateSyntaxError         = "42601"
	SQLStateUndefinedObject     = "42704"
	SQLStateQueryCanceled       = "57014"
	SQLStateDataException       = "22003"
)

// ErrInFailedTransaction is the error every non-transaction-control
// statement gets while TxState is Failed (spec.md invariant I3).
func ErrInFailedTransaction() *SQLStateError {
	return sqlErr(SQLStateInFailedTransaction, "current transaction is aborted, commands ignored until end of transaction block")
}

// ErrInsufficientPrivilege is returned when check_permission denies a
// statement (spec.md §4.5, invariant P9): the caller raises this before
// doing any engine work, not after. perm and resource are rendered into
// the message only; session takes them as plain strings rather than
// depending on the auth package's Permission/Resource types.
func ErrInsufficientPrivilege(perm, resource string) *SQLStateError {
	return sqlErr(SQLStateInsufficientPriv, "permission denied: %s on %s", perm, resource)
}
