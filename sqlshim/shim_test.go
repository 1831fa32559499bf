package sqlshim

import (
	"strings"
	"testing"
)

func TestClassifyTxVerb(t *testing.T) {
	cases := map[string]TxVerb{
		"BEGIN":               TxBegin,
		"  begin transaction": TxBegin,
		"START TRANSACTION;":  TxBegin,
		"commit":              TxCommit,
		"COMMIT WORK":         TxCommit,
		"end;":                TxCommit,
		"rollback":            TxRollback,
		"ABORT":               TxRollback,
		"SELECT 1":            TxNone,
	}
	for sql, want := range cases {
		if got := ClassifyTxVerb(sql); got != want {
			t.Errorf("ClassifyTxVerb(%q) = %v, want %v", sql, got, want)
		}
	}
}

func TestProcessSimpleSelect(t *testing.T) {
	stmts, err := Process("SELECT 1 AS x")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	if !strings.Contains(stmts[0].SQL, "SELECT") {
		t.Errorf("SQL = %q", stmts[0].SQL)
	}
}

func TestProcessRewritesVersionAlias(t *testing.T) {
	stmts, err := Process("SELECT version()")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("got %d statements", len(stmts))
	}
	if !strings.Contains(stmts[0].SQL, "AS version") && !strings.Contains(stmts[0].SQL, `"version"`) {
		t.Errorf("expected version() to carry a version alias, got %q", stmts[0].SQL)
	}
}

func TestProcessQualifiesCatalogTable(t *testing.T) {
	stmts, err := Process("SELECT relname FROM pg_class")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(stmts[0].SQL, "pg_catalog.pg_class") {
		t.Errorf("expected pg_class to be qualified, got %q", stmts[0].SQL)
	}
}

func TestProcessStripsPgCatalogFromGenericFunc(t *testing.T) {
	stmts, err := Process("SELECT * FROM pg_catalog.generate_series(1, 3)")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if strings.Contains(stmts[0].SQL, "pg_catalog.generate_series") {
		t.Errorf("expected pg_catalog. qualifier to be stripped, got %q", stmts[0].SQL)
	}
}

func TestProcessRewritesUnsupportedCast(t *testing.T) {
	stmts, err := Process("SELECT 'pg_class'::regclass")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if strings.Contains(stmts[0].SQL, "regclass") {
		t.Errorf("expected regclass cast to be rewritten, got %q", stmts[0].SQL)
	}
}

func TestProcessDetectsSetAndShow(t *testing.T) {
	stmts, err := Process("SET search_path = public")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !stmts[0].IsSet {
		t.Errorf("expected IsSet=true for SET statement")
	}

	stmts, err = Process("SHOW search_path")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !stmts[0].IsShow {
		t.Errorf("expected IsShow=true for SHOW statement")
	}
}

func TestProcessAliasesDuplicateProjections(t *testing.T) {
	stmts, err := Process("SELECT a.x, b.x FROM a, b")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(stmts[0].SQL, "x_2") {
		t.Errorf("expected duplicate projection to be aliased x_2, got %q", stmts[0].SQL)
	}
}
