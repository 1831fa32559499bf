package fileengine

import (
	"fmt"
	"strconv"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
)

// arrayValue reads arr[i] as a plain Go value (int64, float64, string,
// bool, or nil for SQL NULL), the common currency evalExpr passes
// between operators regardless of the column's concrete Arrow type.
func arrayValue(arr arrow.Array, i int) any {
	if arr.IsNull(i) {
		return nil
	}
	switch a := arr.(type) {
	case *array.Int8:
		return int64(a.Value(i))
	case *array.Int16:
		return int64(a.Value(i))
	case *array.Int32:
		return int64(a.Value(i))
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return int64(a.Value(i))
	case *array.Uint16:
		return int64(a.Value(i))
	case *array.Uint32:
		return int64(a.Value(i))
	case *array.Uint64:
		return int64(a.Value(i))
	case *array.Float32:
		return float64(a.Value(i))
	case *array.Float64:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	default:
		return fmt.Sprint(arr)
	}
}

// castValue converts v to match a CAST's target PostgreSQL type name,
// covering the numeric/text/bool conversions the evaluator's supported
// expression shapes can actually produce.
func castValue(v any, pgName string) (any, error) {
	if v == nil {
		return nil, nil
	}
	dt, ok := arrowTypeForPGName(pgName)
	if !ok {
		return fmt.Sprint(v), nil
	}
	switch dt.ID() {
	case arrow.INT16, arrow.INT32, arrow.INT64:
		return toInt(v), nil
	case arrow.FLOAT32, arrow.FLOAT64:
		return toFloat(v), nil
	case arrow.BOOL:
		return truthy(v), nil
	case arrow.STRING:
		return toText(v), nil
	default:
		return v, nil
	}
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}

func toText(v any) string {
	switch n := v.(type) {
	case string:
		return n
	default:
		return fmt.Sprint(v)
	}
}

func truthy(v any) bool {
	switch n := v.(type) {
	case bool:
		return n
	case int64:
		return n != 0
	case float64:
		return n != 0
	case string:
		return n != ""
	default:
		return v != nil
	}
}

// applyOp evaluates a binary arithmetic or comparison operator over two
// already-evaluated operand values.
func applyOp(op string, l, r any) (any, error) {
	if l == nil || r == nil {
		return nil, nil
	}
	switch op {
	case "=":
		return compareEqual(l, r), nil
	case "<>", "!=":
		return !compareEqual(l, r), nil
	case "<":
		return toFloat(l) < toFloat(r), nil
	case "<=":
		return toFloat(l) <= toFloat(r), nil
	case ">":
		return toFloat(l) > toFloat(r), nil
	case ">=":
		return toFloat(l) >= toFloat(r), nil
	case "+":
		return numericOp(l, r, func(a, b float64) float64 { return a + b }, func(a, b int64) int64 { return a + b }), nil
	case "-":
		return numericOp(l, r, func(a, b float64) float64 { return a - b }, func(a, b int64) int64 { return a - b }), nil
	case "*":
		return numericOp(l, r, func(a, b float64) float64 { return a * b }, func(a, b int64) int64 { return a * b }), nil
	case "/":
		return numericOp(l, r, func(a, b float64) float64 { return a / b }, func(a, b int64) int64 {
			if b == 0 {
				return 0
			}
			return a / b
		}), nil
	default:
		return nil, fmt.Errorf("fileengine: unsupported operator %q", op)
	}
}

func compareEqual(l, r any) bool {
	_, lf := l.(float64)
	_, rf := r.(float64)
	if lf || rf {
		return toFloat(l) == toFloat(r)
	}
	if ls, ok := l.(string); ok {
		rs, _ := r.(string)
		return ls == rs
	}
	return toInt(l) == toInt(r)
}

func numericOp(l, r any, floatOp func(a, b float64) float64, intOp func(a, b int64) int64) any {
	_, lf := l.(float64)
	_, rf := r.(float64)
	if lf || rf {
		return floatOp(toFloat(l), toFloat(r))
	}
	return intOp(toInt(l), toInt(r))
}
