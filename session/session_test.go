package session

import (
	"context"
	"testing"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/arrowpg/arrowpg/sqlshim"
)

func TestTxStateMachine(t *testing.T) {
	s := New("postgres")

	if r := s.ApplyTxVerb(sqlshim.TxBegin); r.Tag != "BEGIN" || s.TxState != TxInBlock {
		t.Fatalf("BEGIN from Idle: tag=%q state=%v", r.Tag, s.TxState)
	}
	if r := s.ApplyTxVerb(sqlshim.TxBegin); r.Tag != "BEGIN" || s.TxState != TxInBlock {
		t.Fatalf("BEGIN from InBlock: tag=%q state=%v", r.Tag, s.TxState)
	}
	if r := s.ApplyTxVerb(sqlshim.TxCommit); r.Tag != "COMMIT" || s.TxState != TxIdle {
		t.Fatalf("COMMIT from InBlock: tag=%q state=%v", r.Tag, s.TxState)
	}

	s.TxState = TxInBlock
	s.Fail()
	if s.TxState != TxFailed {
		t.Fatalf("expected Fail() from InBlock to reach Failed, got %v", s.TxState)
	}
	if r := s.ApplyTxVerb(sqlshim.TxBegin); r.Err == nil {
		t.Fatal("expected BEGIN in Failed state to error")
	}
	if r := s.ApplyTxVerb(sqlshim.TxCommit); r.Tag != "ROLLBACK" || s.TxState != TxIdle {
		t.Fatalf("COMMIT from Failed: tag=%q state=%v", r.Tag, s.TxState)
	}

	s.TxState = TxIdle
	s.Fail()
	if s.TxState != TxIdle {
		t.Fatalf("expected Fail() from Idle to be a no-op, got %v", s.TxState)
	}
}

func TestRejectIfFailed(t *testing.T) {
	s := New("postgres")
	if err := s.RejectIfFailed(); err != nil {
		t.Fatalf("expected Idle session to pass, got %v", err)
	}
	s.TxState = TxFailed
	err := s.RejectIfFailed()
	if err == nil || err.Code != SQLStateInFailedTransaction {
		t.Fatalf("expected 25P01, got %v", err)
	}
}

func TestApplySetTimeZone(t *testing.T) {
	s := New("postgres")
	tag, err := s.ApplySet("TIME ZONE", []string{"'America/New_York'"})
	if err != nil || tag != "SET" {
		t.Fatalf("ApplySet(TIME ZONE) = %q, %v", tag, err)
	}
	col, val := s.ApplyShow("timezone", nil)
	if col != "TimeZone" || val != "America/New_York" {
		t.Fatalf("ApplyShow(timezone) = %q=%q", col, val)
	}
}

func TestApplySetStatementTimeoutSuffixes(t *testing.T) {
	s := New("postgres")
	cases := []struct {
		value    string
		wantMs   string
	}{
		{"5000", "5000"},
		{"5s", "5000"},
		{"2min", "120000"},
		{"750ms", "750"},
		{"0", "0"},
	}
	for _, c := range cases {
		if _, err := s.ApplySet("statement_timeout", []string{c.value}); err != nil {
			t.Fatalf("ApplySet(statement_timeout, %q): %v", c.value, err)
		}
		got, _ := s.Get(metaStatementTimeout)
		if got != c.wantMs {
			t.Errorf("statement_timeout %q => %q, want %q", c.value, got, c.wantMs)
		}
	}

	if _, err := s.ApplySet("statement_timeout", []string{"bogus"}); err == nil {
		t.Error("expected invalid statement_timeout value to error")
	}
}

func TestApplyShowCanned(t *testing.T) {
	s := New("postgres")
	tests := map[string]string{
		"server_version":        "server_version",
		"transaction_isolation": "transaction_isolation",
		"search_path":           "search_path",
	}
	for name, wantCol := range tests {
		col, val := s.ApplyShow(name, nil)
		if col != wantCol || val == "" {
			t.Errorf("ApplyShow(%q) = %q=%q", name, col, val)
		}
	}

	col, val := s.ApplyShow("catalogs", []string{"arrow_catalog", "pg_catalog"})
	if col != "catalogs" || val != "arrow_catalog, pg_catalog" {
		t.Errorf("ApplyShow(catalogs) = %q=%q", col, val)
	}

	col, val = s.ApplyShow("statement_timeout", nil)
	if col != "statement_timeout" || val != "0" {
		t.Errorf("ApplyShow(statement_timeout) default = %q=%q", col, val)
	}
	s.Set(metaStatementTimeout, "3000")
	_, val = s.ApplyShow("statement_timeout", nil)
	if val != "3000ms" {
		t.Errorf("ApplyShow(statement_timeout) = %q, want 3000ms", val)
	}
}

func TestApplyShowDefaultIsCatalogNames(t *testing.T) {
	// SET still accepts and stores an arbitrary variable best-effort, but
	// spec.md §4.6's table answers any SHOW not in the fixed rows with
	// the comma-joined catalog names, not the stored SET value.
	s := New("postgres")
	if _, err := s.ApplySet("application_name", []string{"psql"}); err != nil {
		t.Fatal(err)
	}
	col, val := s.ApplyShow("application_name", []string{"arrow_catalog", "pg_catalog"})
	if col != "application_name" || val != "arrow_catalog, pg_catalog" {
		t.Errorf("ApplyShow(application_name) = %q=%q", col, val)
	}
}

func TestRunWithTimeoutExceeded(t *testing.T) {
	s := New("postgres")
	s.Set(metaStatementTimeout, "10")

	err := RunWithTimeout(context.Background(), s, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	se, ok := err.(*SQLStateError)
	if !ok || se.Code != SQLStateQueryCanceled {
		t.Fatalf("expected 57014, got %v", err)
	}
}

func TestRunWithTimeoutDisabled(t *testing.T) {
	s := New("postgres")
	ran := false
	err := RunWithTimeout(context.Background(), s, func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil || !ran {
		t.Fatalf("expected fn to run and succeed, err=%v ran=%v", err, ran)
	}
}

func TestCommandTagInsert(t *testing.T) {
	pool := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{{Name: "count", Type: arrow.PrimitiveTypes.Uint64}}, nil)
	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()
	b.Field(0).(*array.Uint64Builder).Append(7)
	rec := b.NewRecord()
	defer rec.Release()

	if tag := CommandTag("INSERT", rec); tag != "INSERT 0 7" {
		t.Errorf("CommandTag = %q, want INSERT 0 7", tag)
	}
}

func TestCommandTagSelect(t *testing.T) {
	pool := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{{Name: "x", Type: arrow.PrimitiveTypes.Int32}}, nil)
	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()
	b.Field(0).(*array.Int32Builder).AppendValues([]int32{1, 2, 3}, nil)
	rec := b.NewRecord()
	defer rec.Release()

	if tag := CommandTag("SELECT", rec); tag != "SELECT 3" {
		t.Errorf("CommandTag = %q, want SELECT 3", tag)
	}
}

func TestPreparedStatementAndPortalLifecycle(t *testing.T) {
	s := New("postgres")

	s.Prepare("", "SELECT 1", nil, nil, nil)
	if _, ok := s.Statement(""); !ok {
		t.Fatal("expected unnamed statement to be stored")
	}
	s.Prepare("", "SELECT 2", nil, nil, nil)
	ps, _ := s.Statement("")
	if ps.SQL != "SELECT 2" {
		t.Fatalf("expected unnamed statement to be replaced, got %q", ps.SQL)
	}

	s.Prepare("stmt1", "SELECT $1::int4", nil, []uint32{23}, "plan")
	s.BindPortal("p1", "stmt1", "bound-plan", []int16{0})
	portal, ok := s.GetPortal("p1")
	if !ok || portal.Statement != "stmt1" || portal.BoundPlan != "bound-plan" {
		t.Fatalf("unexpected portal: %+v ok=%v", portal, ok)
	}

	s.ClosePortal("p1")
	if _, ok := s.GetPortal("p1"); ok {
		t.Fatal("expected portal to be closed")
	}
	s.CloseStatement("stmt1")
	if _, ok := s.Statement("stmt1"); ok {
		t.Fatal("expected statement to be closed")
	}
}

func TestStatementTimeoutDuration(t *testing.T) {
	s := New("postgres")
	if d := s.StatementTimeout(); d != 0 {
		t.Fatalf("expected zero duration by default, got %v", d)
	}
	s.Set(metaStatementTimeout, "1500")
	if d := s.StatementTimeout(); d != 1500*time.Millisecond {
		t.Fatalf("expected 1500ms, got %v", d)
	}
}
