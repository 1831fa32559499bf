package session

import (
	"github.com/jeroenrinzema/psql-wire/codes"
	psqlerr "github.com/jeroenrinzema/psql-wire/errors"
)

// codeFor maps a SQLSTATE this package produces to the nearest
// named psql-wire error code. The mapping is approximate in one
// direction only: psql-wire's codes package carries the standard
// PostgreSQL errcodes table, but not every constant name used below was
// directly observed in this corpus (only FeatureNotSupported,
// SyntaxErrorOrAccessRuleViolation, DataException, DatatypeMismatch,
// ConnectionDoesNotExist, InvalidPreparedStatementDefinition, Syntax, and
// Uncategorized were) — see DESIGN.md's session entry for the risk note.
func codeFor(sqlstate string) codes.Code {
	switch sqlstate {
	case SQLStateInFailedTransaction:
		return codes.InFailedSQLTransaction
	case SQLStateInvalidPassword:
		return codes.InvalidPassword
	case SQLStateInsufficientPriv:
		return codes.InsufficientPrivilege
	case SQLStateSyntaxError:
		return codes.Syntax
	case SQLStateUndefinedObject:
		return codes.UndefinedTable
	case SQLStateQueryCanceled:
		return codes.QueryCanceled
	case SQLStateDataException:
		return codes.DataException
	default:
		return codes.Uncategorized
	}
}

// ToWireError wraps a SQLStateError the way the teacher's own handlers
// wrap engine errors before returning them to psql-wire: WithCode then
// WithSeverity.
func (e *SQLStateError) ToWireError() error {
	severity := psqlerr.LevelError
	if e.Fatal {
		severity = psqlerr.LevelFatal
	}
	return psqlerr.WithSeverity(psqlerr.WithCode(e, codeFor(e.Code)), severity)
}

// WireError adapts any error session code returns into the psql-wire
// error shape wireserver's handlers return to the client: a
// *SQLStateError gets its real SQLSTATE code and severity, anything
// else falls back to Uncategorized/LevelError the way the teacher's
// handlers treat engine errors they cannot classify further.
func WireError(err error) error {
	if err == nil {
		return nil
	}
	if se, ok := err.(*SQLStateError); ok {
		return se.ToWireError()
	}
	return psqlerr.WithSeverity(psqlerr.WithCode(err, codes.Uncategorized), psqlerr.LevelError)
}
