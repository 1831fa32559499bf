package session

import (
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
)

// CommandTag builds the CommandComplete tag for a statement's result,
// following spec.md §4.6's INSERT special case: when the engine's
// result batch is a single "count" column (the convention DataFusion's
// INSERT execution returns rows-affected under), report
// "INSERT 0 <n>" instead of the generic "<cmdType> <n>" row-count tag
// every other statement kind gets (just "<cmdType>" when rec is nil).
func CommandTag(cmdType string, rec arrow.Record) string {
	if cmdType == "INSERT" {
		if n, ok := insertRowCount(rec); ok {
			return fmt.Sprintf("INSERT 0 %d", n)
		}
		return "INSERT 0 0"
	}
	if rec == nil {
		return cmdType
	}
	return fmt.Sprintf("%s %d", cmdType, rec.NumRows())
}

// insertRowCount recognizes the single-column "count" record batch
// DataFusion's INSERT execution plan returns, summing it in case the
// engine streamed the count across more than one batch's worth of rows
// (it returns one row per batch in practice, but nothing guarantees
// that).
func insertRowCount(rec arrow.Record) (int64, bool) {
	if rec == nil {
		return 0, false
	}
	idx := rec.Schema().FieldIndices("count")
	if len(idx) == 0 {
		return 0, false
	}
	col := rec.Column(idx[0])
	u64, ok := col.(*array.Uint64)
	if !ok {
		return 0, false
	}
	var total int64
	for i := 0; i < u64.Len(); i++ {
		total += int64(u64.Value(i))
	}
	return total, true
}
