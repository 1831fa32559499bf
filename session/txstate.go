package session

import "github.com/arrowpg/arrowpg/sqlshim"

// TxResult is what ApplyTxVerb tells the caller to send back over the
// wire: a command tag (BEGIN/COMMIT/ROLLBACK) or, for the Failed+BEGIN
// case, an error instead.
type TxResult struct {
	Tag string
	Err *SQLStateError
}

// ApplyTxVerb runs one row of spec.md §4.6's transaction state table and
// updates s.TxState in place. verb must not be TxNone — callers first
// run sqlshim.ClassifyTxVerb and only reach here on a match.
func (s *Session) ApplyTxVerb(verb sqlshim.TxVerb) TxResult {
	switch verb {
	case sqlshim.TxBegin:
		switch s.TxState {
		case TxIdle:
			s.TxState = TxInBlock
			return TxResult{Tag: "BEGIN"}
		case TxInBlock:
			// already in a block: PostgreSQL warns and no-ops.
			return TxResult{Tag: "BEGIN"}
		case TxFailed:
			return TxResult{Err: sqlErr(SQLStateInFailedTransaction,
				"current transaction is aborted, commands ignored until end of transaction block")}
		}
	case sqlshim.TxCommit:
		switch s.TxState {
		case TxFailed:
			s.TxState = TxIdle
			return TxResult{Tag: "ROLLBACK"}
		default:
			s.TxState = TxIdle
			return TxResult{Tag: "COMMIT"}
		}
	case sqlshim.TxRollback:
		s.TxState = TxIdle
		return TxResult{Tag: "ROLLBACK"}
	}
	return TxResult{}
}

// Fail transitions to Failed after a statement errors out while inside a
// transaction block, per spec.md §4.6's InBlock+engine-error row. Outside
// a block (Idle) an engine error does not poison any later statement, so
// the state is left unchanged.
func (s *Session) Fail() {
	if s.TxState == TxInBlock {
		s.TxState = TxFailed
	}
}

// RejectIfFailed returns ErrInFailedTransaction when the session is in
// the Failed state, the check every non-transaction-control statement
// needs before reaching the engine (spec.md invariant I3).
func (s *Session) RejectIfFailed() *SQLStateError {
	if s.TxState == TxFailed {
		return ErrInFailedTransaction()
	}
	return nil
}
