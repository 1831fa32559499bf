package sqlshim

import (
	"strings"
	"testing"
)

func normalized(s string) string {
	return Join(FilterSignificant(Tokenize(s)))
}

func TestApplyBlacklistFullMatch(t *testing.T) {
	sql := `SELECT pol.polname, pol.polpermissive,
              CASE WHEN pol.polroles = '{0}' THEN NULL ELSE pg_catalog.array_to_string(array(select rolname from pg_catalog.pg_roles where oid = any (pol.polroles) order by 1),',') END,
              pg_catalog.pg_get_expr(pol.polqual, pol.polrelid),
              pg_catalog.pg_get_expr(pol.polwithcheck, pol.polrelid),
              CASE pol.polcmd
                WHEN 'r' THEN 'SELECT'
                WHEN 'a' THEN 'INSERT'
                WHEN 'w' THEN 'UPDATE'
                WHEN 'd' THEN 'DELETE'
                END AS cmd
            FROM pg_catalog.pg_policy pol
            WHERE pol.polrelid = '16384' ORDER BY 1;`

	want := normalized(`SELECT
   NULL::TEXT AS polname,
   NULL::TEXT AS polpermissive,
   NULL::TEXT AS array_to_string,
   NULL::TEXT AS pg_get_expr_1,
   NULL::TEXT AS pg_get_expr_2,
   NULL::TEXT AS cmd
 WHERE false;`)

	got := normalized(ApplyBlacklist(sql))
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestApplyBlacklistCompositeTypeScan(t *testing.T) {
	sql := `SELECT n.nspname schema_name,
                                   t.typname type_name
                            FROM   pg_catalog.pg_type t
                                   INNER JOIN pg_catalog.pg_namespace n
                                      ON n.oid = t.typnamespace
                            WHERE ( t.typrelid = 0
                                    OR (
                                          SELECT c.relkind = 'c'
                                          FROM pg_catalog.pg_class c
                                          WHERE c.oid = t.typrelid
                                        )
                                  )
                                  AND NOT EXISTS(
                                        SELECT  1
                                        FROM    pg_catalog.pg_type el
                                        WHERE   el.oid = t.typelem AND el.typarray = t.oid
                                      )
                                  AND n.nspname <> 'pg_catalog'
                                  AND n.nspname <> 'information_schema'
                            ORDER BY 1, 2`

	want := normalized(`SELECT NULL::TEXT AS schema_name, NULL::TEXT AS type_name WHERE false`)
	got := normalized(ApplyBlacklist(sql))
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestApplyBlacklistEmptyQuery(t *testing.T) {
	for _, sql := range []string{"", " ", ";"} {
		toks := FilterSignificant(Tokenize(ApplyBlacklist(sql)))
		if sql != ";" && len(toks) != 0 {
			t.Errorf("ApplyBlacklist(%q) left tokens: %+v", sql, toks)
		}
	}
}

func TestApplyBlacklistPartialMatch(t *testing.T) {
	sql := `SELECT
        CASE WHEN
              quote_ident(table_schema) IN (
              SELECT
                CASE WHEN trim(s[i]) = '"$user"' THEN user ELSE trim(s[i]) END
              FROM
                generate_series(
                  array_lower(string_to_array(current_setting('search_path'),','),1),
                  array_upper(string_to_array(current_setting('search_path'),','),1)
                ) as i,
                string_to_array(current_setting('search_path'),',') s
              )
          THEN quote_ident(table_name)
          ELSE quote_ident(table_schema) || '.' || quote_ident(table_name)
        END AS "table"
        FROM information_schema.tables`

	got := ApplyBlacklist(sql)
	if !strings.Contains(got, "'public'") {
		t.Errorf("expected the search_path subquery to be replaced with 'public', got:\n%s", got)
	}
	if strings.Contains(got, "current_setting") {
		t.Errorf("expected the blacklisted subquery to be fully replaced, got:\n%s", got)
	}
}
