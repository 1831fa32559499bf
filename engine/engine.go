// Package engine declares the narrow contract spec.md §1 treats as an
// external collaborator: something that can plan, describe, bind, and
// execute a parsed SQL statement against whatever tables it knows about.
// wireserver and session depend on this package; they never depend on a
// concrete engine implementation directly, so the reference
// implementation under engine/fileengine can be swapped for a real
// DataFusion-backed adapter (out of scope here — see DESIGN.md) without
// touching the wire-protocol or session layers.
package engine

import (
	"context"

	"github.com/apache/arrow/go/v18/arrow"
	pg_query "github.com/pganalyze/pg_query_go/v5"
)

// Field is one column of a statement's result schema, already reduced
// to what RowDescription needs: a name and an Arrow type the pgtype
// package can map to a PG OID.
type Field struct {
	Name string
	Type arrow.DataType
}

// LogicalPlan is what Prepare returns: an engine-internal representation
// of a parsed, rewritten statement, opaque outside this package's own
// implementations. Extended Query's Parse step stores it on the session
// under a statement name; Describe and Bind both take it back.
type LogicalPlan any

// BoundPlan is a LogicalPlan with parameters substituted, ready to run.
// Simple Query skips the Bind step and produces a BoundPlan with no
// parameters directly from Prepare's LogicalPlan.
type BoundPlan any

// RecordBatchStream yields a statement's result one Arrow batch at a
// time. Next returns io.EOF (via the stdlib sentinel, re-exported by
// callers importing "io") once exhausted.
type RecordBatchStream interface {
	Next() (arrow.Record, error)
	Close()
}

// Engine is the full surface session and wireserver need to run a
// statement: plan it, learn its parameter and result shapes, bind
// parameter values, and execute it under a cancelable context (so a
// statement_timeout deadline on ctx aborts execution promptly).
type Engine interface {
	// Prepare plans tree, the already shim-rewritten parse tree of one
	// statement, returning a LogicalPlan Describe/Bind can inspect.
	Prepare(ctx context.Context, tree *pg_query.RawStmt) (LogicalPlan, error)

	// Describe returns the OIDs of tree's placeholders in $1, $2, ...
	// order and the result schema the statement will produce.
	Describe(plan LogicalPlan) (paramOIDs []uint32, fields []Field, err error)

	// Bind substitutes decoded parameter values into plan, returning a
	// BoundPlan ready for Execute. params[i] is nil for an unbound
	// optional parameter at statement time (Simple Query's case, where
	// params is always empty).
	Bind(plan LogicalPlan, params []any) (BoundPlan, error)

	// Execute runs plan, streaming its result. ctx carries the
	// statement's deadline, if any.
	Execute(ctx context.Context, plan BoundPlan) (RecordBatchStream, error)
}
