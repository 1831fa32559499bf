package fileengine

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/arrowpg/arrowpg/engine"
	"github.com/arrowpg/arrowpg/sqlshim"
)

// prepare parses sql through the same shim pipeline the wire layer uses
// and plans it against e, failing the test on any error.
func prepare(t *testing.T, e *Engine, sql string) engine.LogicalPlan {
	t.Helper()
	stmts, err := sqlshim.Process(sql)
	if err != nil {
		t.Fatalf("sqlshim.Process(%q): %v", sql, err)
	}
	if len(stmts) != 1 {
		t.Fatalf("Process(%q) returned %d statements, want 1", sql, len(stmts))
	}
	plan, err := e.Prepare(context.Background(), stmts[0].Tree)
	if err != nil {
		t.Fatalf("Prepare(%q): %v", sql, err)
	}
	return plan
}

// seedTable registers a two-row "widgets" table with an int4 id column
// and a text name column, directly via Register (bypassing the file
// loaders, which are exercised separately).
func seedTable(e *Engine) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "name", Type: arrow.BinaryTypes.String},
	}, nil)
	pool := memory.NewGoAllocator()
	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()
	b.Field(0).(*array.Int32Builder).AppendValues([]int32{1, 2}, nil)
	b.Field(1).(*array.StringBuilder).AppendValues([]string{"bolt", "nut"}, nil)
	rec := b.NewRecord()
	defer rec.Release()
	e.Register("widgets", schema, []arrow.Record{rec})
}

func execute(t *testing.T, e *Engine, plan engine.LogicalPlan, params []any) arrow.Record {
	t.Helper()
	bound, err := e.Bind(plan, params)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	stream, err := e.Execute(context.Background(), bound)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	defer stream.Close()
	rec, err := stream.Next()
	if err != nil {
		t.Fatalf("stream.Next: %v", err)
	}
	if _, err := stream.Next(); err != io.EOF {
		t.Fatalf("second Next() = %v, want io.EOF", err)
	}
	return rec
}

func TestTablelessSelectLiteral(t *testing.T) {
	e := New()
	plan := prepare(t, e, "SELECT 1 AS x")
	_, fields, err := e.Describe(plan)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if len(fields) != 1 || fields[0].Name != "x" {
		t.Fatalf("fields = %+v", fields)
	}
	rec := execute(t, e, plan, nil)
	if rec.NumRows() != 1 {
		t.Fatalf("NumRows = %d, want 1", rec.NumRows())
	}
	if got := rec.Column(0).(*array.Int32).Value(0); got != 1 {
		t.Errorf("x = %d, want 1", got)
	}
}

func TestSelectStarFromTable(t *testing.T) {
	e := New()
	seedTable(e)
	plan := prepare(t, e, "SELECT * FROM widgets")
	rec := execute(t, e, plan, nil)
	if rec.NumRows() != 2 {
		t.Fatalf("NumRows = %d, want 2", rec.NumRows())
	}
	if rec.Schema().Field(0).Name != "id" || rec.Schema().Field(1).Name != "name" {
		t.Fatalf("columns = %v", rec.Schema())
	}
}

func TestSelectWithWhereFilter(t *testing.T) {
	e := New()
	seedTable(e)
	plan := prepare(t, e, "SELECT name FROM widgets WHERE id = 2")
	rec := execute(t, e, plan, nil)
	if rec.NumRows() != 1 {
		t.Fatalf("NumRows = %d, want 1", rec.NumRows())
	}
	if got := rec.Column(0).(*array.String).Value(0); got != "nut" {
		t.Errorf("name = %q, want nut", got)
	}
}

func TestSelectUndefinedTable(t *testing.T) {
	e := New()
	stmts, err := sqlshim.Process("SELECT * FROM nope")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	_, err = e.Prepare(context.Background(), stmts[0].Tree)
	if err == nil {
		t.Fatal("Prepare: want error for undefined table")
	}
	var ut *undefinedTable
	if !isUndefinedTable(err, &ut) {
		t.Errorf("err = %v, want *undefinedTable", err)
	}
}

func isUndefinedTable(err error, target **undefinedTable) bool {
	ut, ok := err.(*undefinedTable)
	if ok {
		*target = ut
	}
	return ok
}

func TestParamCastInfersOID(t *testing.T) {
	e := New()
	plan := prepare(t, e, "SELECT $1::int4 + 1 AS total")
	paramOIDs, fields, err := e.Describe(plan)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if len(paramOIDs) != 1 {
		t.Fatalf("paramOIDs = %v, want 1 entry", paramOIDs)
	}
	if paramOIDs[0] != oidForInt4(t) {
		t.Errorf("paramOIDs[0] = %d, want int4 OID", paramOIDs[0])
	}
	if fields[0].Type.ID() != arrow.INT32 {
		t.Errorf("result type = %v, want int32", fields[0].Type)
	}

	rec := execute(t, e, plan, []any{int64(41)})
	if got := rec.Column(0).(*array.Int32).Value(0); got != 42 {
		t.Errorf("total = %d, want 42", got)
	}
}

func oidForInt4(t *testing.T) uint32 {
	t.Helper()
	o, ok := oidForPGName("int4")
	if !ok {
		t.Fatal("oidForPGName(int4) missing")
	}
	return o
}

func TestInsertValuesAppendsRowsAndReturnsCount(t *testing.T) {
	e := New()
	seedTable(e)
	plan := prepare(t, e, "INSERT INTO widgets (id, name) VALUES (3, 'screw')")
	rec := execute(t, e, plan, nil)
	if rec.Schema().Field(0).Name != "count" {
		t.Fatalf("columns = %v", rec.Schema())
	}
	if got := rec.Column(0).(*array.Uint64).Value(0); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}

	table, ok := e.Table("widgets")
	if !ok {
		t.Fatal("widgets table missing after insert")
	}
	if n := rowCount(table); n != 3 {
		t.Errorf("rowCount after insert = %d, want 3", n)
	}
}

func TestInsertDefaultsMissingColumnToNull(t *testing.T) {
	e := New()
	seedTable(e)
	plan := prepare(t, e, "INSERT INTO widgets (id) VALUES (4)")
	execute(t, e, plan, nil)

	table, _ := e.Table("widgets")
	batches := table.Snapshot()
	last := batches[len(batches)-1]
	if !last.Column(1).IsNull(0) {
		t.Errorf("name column = %v, want null", last.Column(1))
	}
}

func TestPgSleepEquivalentCancelsOnTimeout(t *testing.T) {
	e := New()
	plan := prepare(t, e, "SELECT pg_sleep_equivalent(60) AS slept")
	bound, err := e.Bind(plan, nil)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = e.Execute(ctx, bound)
	if err == nil {
		t.Fatal("Execute: want context deadline error")
	}
}

func TestDatabasesExposesRegisteredTables(t *testing.T) {
	e := New()
	seedTable(e)
	dbs := e.Databases()
	if len(dbs) != 1 || dbs[0].Name != "datafusion" {
		t.Fatalf("Databases = %+v", dbs)
	}
	ns := dbs[0].Namespaces
	if len(ns) != 1 || ns[0].Name != "public" {
		t.Fatalf("Namespaces = %+v", ns)
	}
	if len(ns[0].Tables) != 1 || ns[0].Tables[0].Name != "widgets" {
		t.Fatalf("Tables = %+v", ns[0].Tables)
	}
}
