package fileengine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	pg_query "github.com/pganalyze/pg_query_go/v5"
)

// typeOfExpr infers expr's Arrow result type without evaluating it,
// walking the same shapes evalExpr knows how to evaluate. table is nil
// for a tableless SELECT, in which case a bare ColumnRef is an error.
func typeOfExpr(expr *pg_query.Node, table *Table) (arrow.DataType, error) {
	switch {
	case expr.GetAConst() != nil:
		return typeOfConst(expr.GetAConst()), nil

	case expr.GetColumnRef() != nil:
		name := lastField(expr.GetColumnRef())
		if table == nil {
			return nil, fmt.Errorf("fileengine: column %q referenced with no FROM table", name)
		}
		idx := table.Schema.FieldIndices(name)
		if len(idx) == 0 {
			return nil, fmt.Errorf("fileengine: column %q does not exist", name)
		}
		return table.Schema.Field(idx[0]).Type, nil

	case expr.GetTypeCast() != nil:
		tc := expr.GetTypeCast()
		last := tc.TypeName.Names[len(tc.TypeName.Names)-1].GetString_()
		if last == nil {
			return arrow.BinaryTypes.String, nil
		}
		if dt, ok := arrowTypeForPGName(last.Sval); ok {
			return dt, nil
		}
		return arrow.BinaryTypes.String, nil

	case expr.GetAExpr() != nil:
		return typeOfAExpr(expr.GetAExpr(), table)

	case expr.GetBoolExpr() != nil:
		return arrow.FixedWidthTypes.Boolean, nil

	case expr.GetFuncCall() != nil:
		return typeOfFuncCall(expr.GetFuncCall()), nil

	case expr.GetParamRef() != nil:
		// Unknown until bound; callers that need a concrete OID look for
		// an enclosing Cast first (collectParamOIDs) — a bare, uncast
		// placeholder used directly as a result column has no declared
		// type, so it is reported as text, matching PostgreSQL's own
		// "unknown" literal defaulting to text once it reaches output.
		return arrow.BinaryTypes.String, nil

	default:
		return nil, fmt.Errorf("fileengine: unsupported expression")
	}
}

func typeOfConst(ac *pg_query.A_Const) arrow.DataType {
	switch {
	case ac.GetIval() != nil:
		return arrow.PrimitiveTypes.Int32
	case ac.GetFval() != nil:
		return arrow.PrimitiveTypes.Float64
	case ac.GetBoolval() != nil:
		return arrow.FixedWidthTypes.Boolean
	case ac.GetSval() != nil:
		return arrow.BinaryTypes.String
	default:
		return arrow.BinaryTypes.String // AConst.Isnull: untyped NULL
	}
}

func typeOfFuncCall(fc *pg_query.FuncCall) arrow.DataType {
	if name := lastFuncName(fc); name == "pg_sleep_equivalent" {
		return arrow.FixedWidthTypes.Boolean
	}
	return arrow.BinaryTypes.String
}

func typeOfAExpr(ae *pg_query.A_Expr, table *Table) (arrow.DataType, error) {
	op := aExprOp(ae)
	switch op {
	case "=", "<>", "<", "<=", ">", ">=", "and", "or":
		return arrow.FixedWidthTypes.Boolean, nil
	}
	lt, err := typeOfExpr(ae.Lexpr, table)
	if err != nil {
		return nil, err
	}
	rt, err := typeOfExpr(ae.Rexpr, table)
	if err != nil {
		return nil, err
	}
	return promote(lt, rt), nil
}

// promote picks the arithmetic result type for a binary operator:
// Float64 if either side is floating point, Int32 if both sides are
// Int32 (so "$1::int4 + 1" keeps producing an int4-sized result, per
// spec.md's scenario 6), Int64 otherwise.
func promote(a, b arrow.DataType) arrow.DataType {
	if a.ID() == arrow.FLOAT64 || b.ID() == arrow.FLOAT64 || a.ID() == arrow.FLOAT32 || b.ID() == arrow.FLOAT32 {
		return arrow.PrimitiveTypes.Float64
	}
	if a.ID() == arrow.INT32 && b.ID() == arrow.INT32 {
		return arrow.PrimitiveTypes.Int32
	}
	return arrow.PrimitiveTypes.Int64
}

func aExprOp(ae *pg_query.A_Expr) string {
	if len(ae.Name) == 0 {
		return ""
	}
	if s := ae.Name[0].GetString_(); s != nil {
		return s.Sval
	}
	return ""
}

func lastField(cr *pg_query.ColumnRef) string {
	if len(cr.Fields) == 0 {
		return ""
	}
	if s := cr.Fields[len(cr.Fields)-1].GetString_(); s != nil {
		return s.Sval
	}
	return ""
}

func lastFuncName(fc *pg_query.FuncCall) string {
	if len(fc.Funcname) == 0 {
		return ""
	}
	if s := fc.Funcname[len(fc.Funcname)-1].GetString_(); s != nil {
		return strings.ToLower(s.Sval)
	}
	return ""
}

// evalExpr evaluates expr for row index i of table (table/row are
// ignored for a tableless SELECT, where i is always 0), substituting
// bound parameter values for any ParamRef encountered.
func evalExpr(ctx context.Context, expr *pg_query.Node, table *Table, row int, params []any) (any, error) {
	switch {
	case expr.GetAConst() != nil:
		return constValue(expr.GetAConst()), nil

	case expr.GetColumnRef() != nil:
		name := lastField(expr.GetColumnRef())
		idx := table.Schema.FieldIndices(name)
		if len(idx) == 0 {
			return nil, fmt.Errorf("fileengine: column %q does not exist", name)
		}
		return columnValue(table.Snapshot(), idx[0], row), nil

	case expr.GetTypeCast() != nil:
		tc := expr.GetTypeCast()
		v, err := evalExpr(ctx, tc.Arg, table, row, params)
		if err != nil {
			return nil, err
		}
		last := tc.TypeName.Names[len(tc.TypeName.Names)-1].GetString_()
		if last == nil {
			return v, nil
		}
		return castValue(v, last.Sval)

	case expr.GetAExpr() != nil:
		return evalAExpr(ctx, expr.GetAExpr(), table, row, params)

	case expr.GetBoolExpr() != nil:
		return evalBoolExpr(ctx, expr.GetBoolExpr(), table, row, params)

	case expr.GetFuncCall() != nil:
		return evalFuncCall(ctx, expr.GetFuncCall(), params)

	case expr.GetParamRef() != nil:
		idx := int(expr.GetParamRef().Number) - 1
		if idx < 0 || idx >= len(params) {
			return nil, fmt.Errorf("fileengine: parameter $%d not bound", idx+1)
		}
		return params[idx], nil

	default:
		return nil, fmt.Errorf("fileengine: unsupported expression")
	}
}

func constValue(ac *pg_query.A_Const) any {
	switch {
	case ac.GetIval() != nil:
		return int64(ac.GetIval().Ival)
	case ac.GetFval() != nil:
		return parseFloatOrZero(ac.GetFval().Fval)
	case ac.GetBoolval() != nil:
		return ac.GetBoolval().Boolval
	case ac.GetSval() != nil:
		return ac.GetSval().Sval
	default:
		return nil
	}
}

func parseFloatOrZero(s string) float64 {
	var f float64
	_, _ = fmt.Sscanf(s, "%g", &f)
	return f
}

// columnValue reads the value at (fieldIdx, row) across batches,
// returning nil for a SQL NULL.
func columnValue(batches []arrow.Record, fieldIdx, row int) any {
	offset := 0
	for _, rec := range batches {
		n := int(rec.NumRows())
		if row < offset+n {
			return arrayValue(rec.Column(fieldIdx), row-offset)
		}
		offset += n
	}
	return nil
}

func evalAExpr(ctx context.Context, ae *pg_query.A_Expr, table *Table, row int, params []any) (any, error) {
	l, err := evalExpr(ctx, ae.Lexpr, table, row, params)
	if err != nil {
		return nil, err
	}
	r, err := evalExpr(ctx, ae.Rexpr, table, row, params)
	if err != nil {
		return nil, err
	}
	return applyOp(aExprOp(ae), l, r)
}

func evalBoolExpr(ctx context.Context, be *pg_query.BoolExpr, table *Table, row int, params []any) (any, error) {
	vals := make([]bool, len(be.Args))
	for i, a := range be.Args {
		v, err := evalExpr(ctx, a, table, row, params)
		if err != nil {
			return nil, err
		}
		vals[i] = truthy(v)
	}
	switch be.Boolop {
	case pg_query.BoolExprType_AND_EXPR:
		for _, v := range vals {
			if !v {
				return false, nil
			}
		}
		return true, nil
	case pg_query.BoolExprType_OR_EXPR:
		for _, v := range vals {
			if v {
				return true, nil
			}
		}
		return false, nil
	case pg_query.BoolExprType_NOT_EXPR:
		return !vals[0], nil
	default:
		return nil, fmt.Errorf("fileengine: unsupported boolean operator")
	}
}

func evalFuncCall(ctx context.Context, fc *pg_query.FuncCall, params []any) (any, error) {
	name := lastFuncName(fc)
	switch name {
	case "pg_sleep_equivalent":
		// Test-only stub: sleeps for the given number of seconds so
		// statement_timeout enforcement has something to actually cancel,
		// per spec.md's end-to-end scenario 3.
		var secs float64
		if len(fc.Args) > 0 {
			v, err := evalExpr(ctx, fc.Args[0], nil, 0, params)
			if err != nil {
				return nil, err
			}
			secs = toFloat(v)
		}
		select {
		case <-time.After(time.Duration(secs * float64(time.Second))):
			return true, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	default:
		return nil, fmt.Errorf("fileengine: unsupported function %q", name)
	}
}
