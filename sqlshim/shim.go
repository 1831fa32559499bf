package sqlshim

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v5"
)

// TxVerb classifies a bare transaction-control statement, recognized
// before SQL parsing the way spec.md §4.6 requires: these strings never
// reach the compatibility pipeline or the engine.
type TxVerb int

const (
	TxNone TxVerb = iota
	TxBegin
	TxCommit
	TxRollback
)

var txVerbs = map[string]TxVerb{
	"begin":                 TxBegin,
	"begin transaction":     TxBegin,
	"begin work":            TxBegin,
	"start transaction":     TxBegin,
	"commit":                TxCommit,
	"commit transaction":    TxCommit,
	"commit work":           TxCommit,
	"end":                   TxCommit,
	"end transaction":       TxCommit,
	"rollback":              TxRollback,
	"rollback transaction":  TxRollback,
	"rollback work":         TxRollback,
	"abort":                 TxRollback,
}

// ClassifyTxVerb detects a bare transaction verb in sql, ignoring a
// trailing semicolon and surrounding whitespace, before any SQL parsing
// is attempted. Returns TxNone when sql is not one of these fixed forms.
func ClassifyTxVerb(sql string) TxVerb {
	trimmed := strings.ToLower(strings.TrimSpace(sql))
	trimmed = strings.TrimSuffix(trimmed, ";")
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.Join(strings.Fields(trimmed), " ")
	return txVerbs[trimmed]
}

// Statement is one rewritten, reparsed statement ready for the engine,
// plus the metadata the session layer needs to classify it.
type Statement struct {
	SQL     string
	Tree    *pg_query.RawStmt
	CmdType pg_query.CmdType
	IsSet   bool
	IsShow  bool
}

// SetShow is the parsed form of a SET or SHOW statement, extracted so the
// session layer can apply or report a variable without re-parsing.
type SetShow struct {
	IsShow bool
	Name   string
	Values []string
}

// Process runs the full compatibility pipeline — blacklist substitution,
// then AST rewrite rules 2-12 — and returns one Statement per top-level
// SQL statement found in sql (psql-wire hands the shim one simple-query
// string at a time, but that string may itself contain several
// semicolon-separated statements).
func Process(sql string) ([]Statement, error) {
	blacklisted := ApplyBlacklist(sql)

	result, err := pg_query.Parse(blacklisted)
	if err != nil {
		return nil, fmt.Errorf("sqlshim: parse: %w", err)
	}

	stmts := make([]Statement, 0, len(result.Stmts))
	for _, raw := range result.Stmts {
		if raw.Stmt == nil {
			continue
		}
		n := raw.Stmt
		n = aliasDuplicatedProjection(n)
		n = resolveUnqualifiedIdentifier(n)
		n = rewriteArrayAnyAllOperation(n)
		n = prependUnqualifiedPgTableName(n)
		n = removeQualifier(n)
		n = removeUnsupportedTypes(n)
		n = fixArrayLiteral(n)
		n = currentUserVariableToSessionUserFunctionCall(n)
		n = fixCollate(n)
		n = removeSubqueryFromProjection(n)
		n = fixVersionColumnName(n)
		raw.Stmt = n

		text, err := pg_query.Deparse(&pg_query.ParseResult{
			Version: result.Version,
			Stmts:   []*pg_query.RawStmt{raw},
		})
		if err != nil {
			return nil, fmt.Errorf("sqlshim: deparse: %w", err)
		}

		stmts = append(stmts, Statement{
			SQL:     text,
			Tree:    raw,
			CmdType: cmdTypeOf(n),
			IsSet:   n.GetVariableSetStmt() != nil,
			IsShow:  n.GetVariableShowStmt() != nil,
		})
	}
	return stmts, nil
}

func cmdTypeOf(n *pg_query.Node) pg_query.CmdType {
	switch {
	case n.GetSelectStmt() != nil:
		return pg_query.CmdType_CMD_SELECT
	case n.GetInsertStmt() != nil:
		return pg_query.CmdType_CMD_INSERT
	case n.GetUpdateStmt() != nil:
		return pg_query.CmdType_CMD_UPDATE
	case n.GetDeleteStmt() != nil:
		return pg_query.CmdType_CMD_DELETE
	default:
		return pg_query.CmdType_CMD_UTILITY
	}
}

// ParseSetShow extracts the variable name and literal value(s) from a
// parsed SET or SHOW statement, for session.Session to apply without
// depending on pg_query_go directly.
func ParseSetShow(n *pg_query.Node) *SetShow {
	if show := n.GetVariableShowStmt(); show != nil {
		return &SetShow{IsShow: true, Name: show.Name}
	}
	set := n.GetVariableSetStmt()
	if set == nil {
		return nil
	}
	out := &SetShow{Name: set.Name}
	for _, arg := range set.Args {
		out.Values = append(out.Values, setArgText(arg))
	}
	return out
}

func setArgText(n *pg_query.Node) string {
	ac := n.GetAConst()
	if ac == nil {
		return ""
	}
	if s := ac.GetSval(); s != nil {
		return s.Sval
	}
	if i := ac.GetIval(); i != nil {
		return fmt.Sprintf("%d", i.Ival)
	}
	if f := ac.GetFval(); f != nil {
		return f.Fval
	}
	return ""
}

// FirstRelationName returns the name of the first relation referenced in
// stmt, used by auth's permission classifier (spec.md §9 open question
// (b)): an AST-derived relation name, one step better than the "first
// token after from|into|table" string heuristic spec.md documents as an
// acceptable simplification, though still not a full projection of every
// table touched across subqueries and CTEs.
func FirstRelationName(n *pg_query.Node) string {
	var found string
	walkRangeVars(n, func(rv *pg_query.RangeVar) {
		if found == "" {
			found = rv.Relname
		}
	})
	return found
}
