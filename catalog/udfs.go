package catalog

import (
	"fmt"
	"strings"
)

// reservedWords is PostgreSQL's reserved-keyword list (SQL:2016 reserved
// plus PostgreSQL's own additions) that quote_ident must not emit
// unquoted even when the identifier is otherwise a safe bare word.
var reservedWords = buildReservedWords()

func buildReservedWords() map[string]bool {
	words := []string{
		"all", "analyse", "analyze", "and", "any", "array", "as", "asc",
		"asymmetric", "both", "case", "cast", "check", "collate", "column",
		"constraint", "create", "current_catalog", "current_date",
		"current_role", "current_time", "current_timestamp", "current_user",
		"default", "deferrable", "desc", "distinct", "do", "else", "end",
		"except", "false", "fetch", "for", "foreign", "from", "grant",
		"group", "having", "in", "initially", "intersect", "into",
		"lateral", "leading", "limit", "localtime", "localtimestamp",
		"not", "null", "offset", "on", "only", "or", "order", "placing",
		"primary", "references", "returning", "select", "session_user",
		"some", "symmetric", "table", "then", "to", "trailing", "true",
		"union", "unique", "user", "using", "variadic", "when", "where",
		"window", "with", "authorization", "binary", "concurrently",
		"cross", "freeze", "full", "ilike", "inner", "is", "isnull",
		"join", "left", "like", "natural", "notnull", "outer", "over",
		"overlaps", "right", "similar", "verbose",
	}
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[w] = true
	}
	return out
}

// QuoteIdent mirrors PostgreSQL's quote_ident: an identifier is returned
// unquoted only when it starts with a letter or underscore, consists
// entirely of lowercase letters, digits and underscores, and is not a
// reserved word; any other input is wrapped in double quotes with
// interior quotes doubled.
func QuoteIdent(s string) string {
	if isSafeIdent(s) {
		return s
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		if r == '"' {
			sb.WriteByte('"')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('"')
	return sb.String()
}

func isSafeIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
			// always fine
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return !reservedWords[s]
}

// ParseIdent mirrors PostgreSQL's parse_ident: splits a (possibly
// dot-qualified, possibly double-quoted) identifier string into its
// parts. In strict mode a leading, trailing, or doubled dot is an error;
// in non-strict mode those are silently collapsed.
func ParseIdent(input string, strict bool) ([]string, error) {
	var parts []string
	i, n := 0, len(input)
	sawDot := true // start-of-string counts as "just saw a dot" so a leading dot is detected uniformly
	for i < n {
		switch {
		case input[i] == '.':
			if sawDot {
				if strict {
					return nil, fmt.Errorf("catalog: parse_ident(%q): improper qualified name (extra or leading dot)", input)
				}
				i++
				continue
			}
			sawDot = true
			i++
		case input[i] == '"':
			part, next, err := scanQuotedIdentPart(input, i)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
			i = next
			sawDot = false
		default:
			j := i
			for j < n && input[j] != '.' {
				j++
			}
			parts = append(parts, input[i:j])
			i = j
			sawDot = false
		}
	}
	if sawDot && len(parts) > 0 && strict {
		return nil, fmt.Errorf("catalog: parse_ident(%q): improper qualified name (trailing dot)", input)
	}
	return parts, nil
}

func scanQuotedIdentPart(input string, start int) (string, int, error) {
	var sb strings.Builder
	i, n := start+1, len(input)
	for i < n {
		if input[i] != '"' {
			sb.WriteByte(input[i])
			i++
			continue
		}
		if i+1 < n && input[i+1] == '"' {
			sb.WriteByte('"')
			i += 2
			continue
		}
		return sb.String(), i + 1, nil
	}
	return "", 0, fmt.Errorf("catalog: parse_ident(%q): unterminated quoted identifier", input)
}

// serverVersion is the hardcoded string version() reports, matching
// datafusion-postgres's own hardcoded version UDF (no real PostgreSQL
// server backs this, so no version number could be more "true" than any
// other).
const serverVersion = "PostgreSQL 15.4 (arrowpg) on x86_64-pc-linux-gnu, compiled by go"

// Version implements version().
func Version() string { return serverVersion }

// CurrentSchema implements current_schema().
func CurrentSchema() string { return "public" }

// CurrentSchemas implements current_schemas(include_implicit).
func CurrentSchemas(includeImplicit bool) []string {
	if includeImplicit {
		return []string{"public", "information_schema", "pg_catalog"}
	}
	return []string{"public"}
}

// PgGetUserByID implements pg_get_userbyid(oid): every role the
// permission model needs to report as an owner is the fixed superuser.
func PgGetUserByID(uint32) string { return "postgres" }

// PgTableIsVisible implements pg_table_is_visible(oid): every relation
// this surrogate serves is visible under search_path = public.
func PgTableIsVisible(uint32) bool { return true }

// HasTablePrivilege2 implements the 2-argument has_table_privilege(table,
// privilege) form, always reporting access since this surrogate has no
// row-level privilege model beyond auth.Manager's coarse grants.
func HasTablePrivilege2(table, privilege string) bool { return true }

// HasTablePrivilege3 implements the 3-argument has_table_privilege(user,
// table, privilege) form.
func HasTablePrivilege3(user, table, privilege string) bool { return true }

// FormatType implements format_type(oid, mod): a fixed placeholder,
// sufficient for the introspection queries this system must satisfy
// without a real type-formatting engine.
func FormatType(oid uint32, mod int32) string { return "???" }

// PgGetExpr implements pg_get_expr(expr, relid [, pretty]): there is no
// stored, re-deparseable expression tree behind any catalog row this
// surrogate serves, so it always reports an empty definition.
func PgGetExpr(expr string, relid uint32, pretty ...bool) string { return "" }
