package fileengine

import (
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	pg_query "github.com/pganalyze/pg_query_go/v5"

	"github.com/arrowpg/arrowpg/engine"
)

type boundSelect struct {
	plan   *selectPlan
	params []any
}

type boundInsert struct {
	plan   *insertPlan
	params []any
}

// Bind implements engine.Engine: it just pairs the plan with its
// parameter values, since fileengine's evaluator substitutes them at
// Execute time rather than rewriting the plan tree.
func (e *Engine) Bind(plan engine.LogicalPlan, params []any) (engine.BoundPlan, error) {
	switch p := plan.(type) {
	case *selectPlan:
		return &boundSelect{plan: p, params: params}, nil
	case *insertPlan:
		return &boundInsert{plan: p, params: params}, nil
	default:
		return nil, fmt.Errorf("fileengine: Bind: unknown plan type %T", plan)
	}
}

// Execute implements engine.Engine.
func (e *Engine) Execute(ctx context.Context, bound engine.BoundPlan) (engine.RecordBatchStream, error) {
	switch b := bound.(type) {
	case *boundSelect:
		rec, err := e.executeSelect(ctx, b)
		if err != nil {
			return nil, err
		}
		return newOneShotStream(rec), nil
	case *boundInsert:
		rec, err := e.executeInsert(ctx, b)
		if err != nil {
			return nil, err
		}
		return newOneShotStream(rec), nil
	default:
		return nil, fmt.Errorf("fileengine: Execute: unknown bound plan type %T", bound)
	}
}

func rowCount(table *Table) int {
	if table == nil {
		return 1
	}
	n := 0
	for _, rec := range table.Snapshot() {
		n += int(rec.NumRows())
	}
	return n
}

func (e *Engine) executeSelect(ctx context.Context, b *boundSelect) (arrow.Record, error) {
	plan := b.plan
	schema := arrow.NewSchema(fieldsToArrow(plan.fields), nil)
	bld := array.NewRecordBuilder(e.pool, schema)
	defer bld.Release()

	total := rowCount(plan.table)
	for row := 0; row < total; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if plan.where != nil {
			keep, err := evalExpr(ctx, plan.where, plan.table, row, b.params)
			if err != nil {
				return nil, err
			}
			if !truthy(keep) {
				continue
			}
		}
		for i, t := range plan.targets {
			v, err := evalExpr(ctx, t.expr, plan.table, row, b.params)
			if err != nil {
				return nil, err
			}
			appendValue(bld.Field(i), plan.fields[i].Type, v)
		}
	}
	rec := bld.NewRecord()
	return rec, nil
}

func (e *Engine) executeInsert(ctx context.Context, b *boundInsert) (arrow.Record, error) {
	plan := b.plan
	schema := plan.table.Schema

	bld := array.NewRecordBuilder(e.pool, schema)
	defer bld.Release()

	for _, rowExprs := range plan.rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values := make(map[string]*pg_query.Node, len(plan.columns))
		for i, col := range plan.columns {
			if i < len(rowExprs) {
				values[col] = rowExprs[i]
			}
		}
		for i, f := range schema.Fields() {
			node, ok := values[f.Name]
			if !ok || node == nil {
				bld.Field(i).AppendNull()
				continue
			}
			v, err := evalExpr(ctx, node, nil, 0, b.params)
			if err != nil {
				return nil, err
			}
			appendValue(bld.Field(i), f.Type, v)
		}
	}
	rec := bld.NewRecord()
	plan.table.append(rec)

	countSchema := arrow.NewSchema([]arrow.Field{{Name: "count", Type: arrow.PrimitiveTypes.Uint64}}, nil)
	cb := array.NewRecordBuilder(e.pool, countSchema)
	defer cb.Release()
	cb.Field(0).(*array.Uint64Builder).Append(uint64(len(plan.rows)))
	return cb.NewRecord(), nil
}

func fieldsToArrow(fields []engine.Field) []arrow.Field {
	out := make([]arrow.Field, len(fields))
	for i, f := range fields {
		out[i] = arrow.Field{Name: f.Name, Type: f.Type, Nullable: true}
	}
	return out
}

func appendValue(fb array.Builder, dt arrow.DataType, v any) {
	if v == nil {
		fb.AppendNull()
		return
	}
	switch b := fb.(type) {
	case *array.Int16Builder:
		b.Append(int16(toInt(v)))
	case *array.Int32Builder:
		b.Append(int32(toInt(v)))
	case *array.Int64Builder:
		b.Append(toInt(v))
	case *array.Float32Builder:
		b.Append(float32(toFloat(v)))
	case *array.Float64Builder:
		b.Append(toFloat(v))
	case *array.BooleanBuilder:
		b.Append(truthy(v))
	case *array.StringBuilder:
		b.Append(toText(v))
	default:
		fb.AppendNull()
	}
}

// oneShotStream is engine.RecordBatchStream over exactly one
// already-materialized record, sufficient for fileengine's fully
// in-memory execution model (no true pagination/backpressure).
type oneShotStream struct {
	rec  arrow.Record
	done bool
}

func newOneShotStream(rec arrow.Record) *oneShotStream { return &oneShotStream{rec: rec} }

func (s *oneShotStream) Next() (arrow.Record, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	return s.rec, nil
}

func (s *oneShotStream) Close() {
	if s.rec != nil {
		s.rec.Release()
	}
}
