package fileengine

import (
	"context"
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"
	pg_query "github.com/pganalyze/pg_query_go/v5"

	"github.com/arrowpg/arrowpg/engine"
)

// target is one projected output column: a name and the expression tree
// that produces it.
type target struct {
	name string
	expr *pg_query.Node
}

// selectPlan is the LogicalPlan for a SELECT, built once by Prepare and
// reused by Describe/Bind/Execute.
type selectPlan struct {
	table     *Table // nil for a tableless SELECT like "SELECT 1"
	targets   []target
	where     *pg_query.Node
	fields    []engine.Field
	paramOIDs []uint32
}

// insertPlan is a planned INSERT ... VALUES: its rows hold one VALUES
// tuple's expressions each, in column order.
type insertPlan struct {
	table   *Table
	columns []string
	rows    [][]*pg_query.Node
}

// Prepare implements engine.Engine: it dispatches on the statement kind
// and builds a fully-typed plan, inferring every target's result type
// and every placeholder's parameter OID up front so Describe needs no
// further AST walk.
func (e *Engine) Prepare(ctx context.Context, tree *pg_query.RawStmt) (engine.LogicalPlan, error) {
	if tree == nil || tree.Stmt == nil {
		return nil, fmt.Errorf("fileengine: empty statement")
	}
	n := tree.Stmt
	switch {
	case n.GetSelectStmt() != nil:
		return e.planSelect(n.GetSelectStmt())
	case n.GetInsertStmt() != nil:
		return e.planInsert(n.GetInsertStmt())
	default:
		return nil, fmt.Errorf("fileengine: unsupported statement kind")
	}
}

func (e *Engine) planSelect(stmt *pg_query.SelectStmt) (*selectPlan, error) {
	var table *Table
	if len(stmt.FromClause) > 0 {
		rv := stmt.FromClause[0].GetRangeVar()
		if rv == nil {
			return nil, fmt.Errorf("fileengine: unsupported FROM clause")
		}
		t, ok := e.Table(rv.Relname)
		if !ok {
			return nil, &undefinedTable{name: rv.Relname}
		}
		table = t
	}

	var targets []target
	for _, item := range stmt.TargetList {
		rt := item.GetResTarget()
		if rt == nil {
			continue
		}
		if isStar(rt.Val) {
			if table == nil {
				return nil, fmt.Errorf("fileengine: SELECT * requires a FROM table")
			}
			for _, f := range table.Schema.Fields() {
				targets = append(targets, target{name: f.Name, expr: columnRefNode(f.Name)})
			}
			continue
		}
		name := rt.Name
		if name == "" {
			name = impliedName(rt.Val)
		}
		targets = append(targets, target{name: name, expr: rt.Val})
	}

	plan := &selectPlan{table: table, targets: targets, where: stmt.WhereClause}

	fields := make([]engine.Field, len(targets))
	for i, t := range targets {
		dt, err := typeOfExpr(t.expr, table)
		if err != nil {
			return nil, err
		}
		fields[i] = engine.Field{Name: t.name, Type: dt}
	}
	plan.fields = fields
	plan.paramOIDs = collectParamOIDs(targets, stmt.WhereClause)
	return plan, nil
}

func (e *Engine) planInsert(stmt *pg_query.InsertStmt) (*insertPlan, error) {
	if stmt.Relation == nil {
		return nil, fmt.Errorf("fileengine: INSERT requires a target table")
	}
	table, ok := e.Table(stmt.Relation.Relname)
	if !ok {
		return nil, &undefinedTable{name: stmt.Relation.Relname}
	}

	var columns []string
	for _, c := range stmt.Cols {
		rt := c.GetResTarget()
		if rt == nil {
			continue
		}
		columns = append(columns, rt.Name)
	}
	if len(columns) == 0 {
		for _, f := range table.Schema.Fields() {
			columns = append(columns, f.Name)
		}
	}

	sel := stmt.SelectStmt.GetSelectStmt()
	if sel == nil {
		return nil, fmt.Errorf("fileengine: INSERT requires a VALUES clause")
	}
	var rows [][]*pg_query.Node
	for _, vl := range sel.ValuesLists {
		list := vl.GetList()
		if list == nil {
			continue
		}
		rows = append(rows, list.Items)
	}

	return &insertPlan{table: table, columns: columns, rows: rows}, nil
}

// Describe implements engine.Engine.
func (e *Engine) Describe(plan engine.LogicalPlan) ([]uint32, []engine.Field, error) {
	switch p := plan.(type) {
	case *selectPlan:
		return p.paramOIDs, p.fields, nil
	case *insertPlan:
		return nil, []engine.Field{{Name: "count", Type: arrow.PrimitiveTypes.Uint64}}, nil
	default:
		return nil, nil, fmt.Errorf("fileengine: Describe: unknown plan type %T", plan)
	}
}

func isStar(n *pg_query.Node) bool {
	cr := n.GetColumnRef()
	if cr == nil || len(cr.Fields) == 0 {
		return false
	}
	return cr.Fields[len(cr.Fields)-1].GetAStar() != nil
}

func impliedName(n *pg_query.Node) string {
	if n == nil {
		return ""
	}
	if cr := n.GetColumnRef(); cr != nil && len(cr.Fields) > 0 {
		if s := cr.Fields[len(cr.Fields)-1].GetString_(); s != nil {
			return s.Sval
		}
	}
	if fc := n.GetFuncCall(); fc != nil && len(fc.Funcname) > 0 {
		if s := fc.Funcname[len(fc.Funcname)-1].GetString_(); s != nil {
			return s.Sval
		}
	}
	return "?column?"
}

func columnRefNode(name string) *pg_query.Node {
	return &pg_query.Node{Node: &pg_query.Node_ColumnRef{ColumnRef: &pg_query.ColumnRef{
		Fields: []*pg_query.Node{{Node: &pg_query.Node_String_{String_: &pg_query.String{Sval: name}}}},
	}}}
}

// collectParamOIDs walks every target expression and the WHERE clause
// looking for a Cast(ParamRef, T) pattern, per spec.md §4's Describe
// rule: "otherwise walk the plan for Cast(placeholder, T) and use T;
// otherwise UNKNOWN". Parameters are 1-indexed ($1, $2, ...) and the
// result slice is sized to the highest $k seen.
func collectParamOIDs(targets []target, where *pg_query.Node) []uint32 {
	oids := map[int]uint32{}
	max := 0
	visit := func(n *pg_query.Node) {
		walkParamCasts(n, func(idx int, pgOID uint32) {
			if idx > max {
				max = idx
			}
			if _, ok := oids[idx]; !ok || pgOID != unknownOID {
				oids[idx] = pgOID
			}
		})
	}
	for _, t := range targets {
		visit(t.expr)
	}
	visit(where)

	out := make([]uint32, max)
	for i := range out {
		out[i] = unknownOID
	}
	for idx, o := range oids {
		out[idx-1] = o
	}
	return out
}

// walkParamCasts calls fn(paramIndex, oid) for every ParamRef found in
// n, using the OID of its enclosing TypeCast when present and
// unknownOID otherwise.
func walkParamCasts(n *pg_query.Node, fn func(idx int, oid uint32)) {
	if n == nil {
		return
	}
	if tc := n.GetTypeCast(); tc != nil {
		if pr := tc.Arg.GetParamRef(); pr != nil && tc.TypeName != nil && len(tc.TypeName.Names) > 0 {
			last := tc.TypeName.Names[len(tc.TypeName.Names)-1].GetString_()
			if last != nil {
				if o, ok := oidForPGName(last.Sval); ok {
					fn(int(pr.Number), o)
					return
				}
			}
		}
	}
	if pr := n.GetParamRef(); pr != nil {
		fn(int(pr.Number), unknownOID)
	}
	if ae := n.GetAExpr(); ae != nil {
		walkParamCasts(ae.Lexpr, fn)
		walkParamCasts(ae.Rexpr, fn)
	}
	if be := n.GetBoolExpr(); be != nil {
		for _, a := range be.Args {
			walkParamCasts(a, fn)
		}
	}
	if tc := n.GetTypeCast(); tc != nil {
		walkParamCasts(tc.Arg, fn)
	}
}
