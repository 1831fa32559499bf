package auth

import (
	"testing"

	pg_query "github.com/pganalyze/pg_query_go/v5"
)

func parseFirstStmt(t *testing.T, sql string) *pg_query.Node {
	t.Helper()
	result, err := pg_query.Parse(sql)
	if err != nil {
		t.Fatalf("parse %q: %v", sql, err)
	}
	if len(result.Stmts) != 1 {
		t.Fatalf("parse %q: want 1 statement, got %d", sql, len(result.Stmts))
	}
	return result.Stmts[0].Stmt
}

func TestClassifyPermissionSelect(t *testing.T) {
	n := parseFirstStmt(t, "SELECT * FROM orders")
	perm, res, check := ClassifyPermission(n, pg_query.CmdType_CMD_SELECT)
	if !check {
		t.Fatal("want needsCheck = true for SELECT")
	}
	if perm != PermSelect {
		t.Errorf("perm = %v, want PermSelect", perm)
	}
	if res != (Resource{Kind: ResourceTable, Name: "orders"}) {
		t.Errorf("resource = %+v", res)
	}
}

func TestClassifyPermissionSelectNoRelationIsAll(t *testing.T) {
	n := parseFirstStmt(t, "SELECT 1")
	_, res, check := ClassifyPermission(n, pg_query.CmdType_CMD_SELECT)
	if !check {
		t.Fatal("want needsCheck = true")
	}
	if res.Kind != ResourceAll {
		t.Errorf("resource = %+v, want ResourceAll", res)
	}
}

func TestClassifyPermissionInsertUpdateDelete(t *testing.T) {
	cases := []struct {
		sql     string
		cmdType pg_query.CmdType
		want    Permission
	}{
		{"INSERT INTO orders VALUES (1)", pg_query.CmdType_CMD_INSERT, PermInsert},
		{"UPDATE orders SET id = 1", pg_query.CmdType_CMD_UPDATE, PermUpdate},
		{"DELETE FROM orders", pg_query.CmdType_CMD_DELETE, PermDelete},
	}
	for _, tc := range cases {
		n := parseFirstStmt(t, tc.sql)
		perm, res, check := ClassifyPermission(n, tc.cmdType)
		if !check {
			t.Errorf("%s: want needsCheck = true", tc.sql)
		}
		if perm != tc.want {
			t.Errorf("%s: perm = %v, want %v", tc.sql, perm, tc.want)
		}
		if res.Name != "orders" {
			t.Errorf("%s: resource = %+v, want table %q", tc.sql, res, "orders")
		}
	}
}

func TestClassifyPermissionCreateTableIsAllResource(t *testing.T) {
	n := parseFirstStmt(t, "CREATE TABLE orders (id int)")
	perm, res, check := ClassifyPermission(n, pg_query.CmdType_CMD_UTILITY)
	if !check {
		t.Fatal("want needsCheck = true for CREATE TABLE")
	}
	if perm != PermCreate {
		t.Errorf("perm = %v, want PermCreate", perm)
	}
	if res.Kind != ResourceAll {
		t.Errorf("resource = %+v, want ResourceAll", res)
	}
}

func TestClassifyPermissionDropTable(t *testing.T) {
	n := parseFirstStmt(t, "DROP TABLE orders")
	perm, _, check := ClassifyPermission(n, pg_query.CmdType_CMD_UTILITY)
	if !check {
		t.Fatal("want needsCheck = true for DROP TABLE")
	}
	if perm != PermDrop {
		t.Errorf("perm = %v, want PermDrop", perm)
	}
}

func TestClassifyPermissionAlterTable(t *testing.T) {
	n := parseFirstStmt(t, "ALTER TABLE orders ADD COLUMN x int")
	perm, res, check := ClassifyPermission(n, pg_query.CmdType_CMD_UTILITY)
	if !check {
		t.Fatal("want needsCheck = true for ALTER TABLE")
	}
	if perm != PermAlter {
		t.Errorf("perm = %v, want PermAlter", perm)
	}
	if res.Name != "orders" {
		t.Errorf("resource = %+v, want table %q", res, "orders")
	}
}

func TestClassifyPermissionExplainIsAlwaysAllowed(t *testing.T) {
	n := parseFirstStmt(t, "EXPLAIN SELECT 1")
	_, _, check := ClassifyPermission(n, pg_query.CmdType_CMD_UTILITY)
	if check {
		t.Error("want needsCheck = false for EXPLAIN")
	}
}

func TestPermissionString(t *testing.T) {
	if got := PermSelect.String(); got != "SELECT" {
		t.Errorf("PermSelect.String() = %q, want SELECT", got)
	}
}
