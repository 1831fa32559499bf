package session

import (
	"fmt"
	"strconv"
	"strings"
)

// metadata keys session reserves for itself; SET stores everything else
// verbatim under its lowercased variable name, where Get can read it (SHOW
// does not: ApplyShow answers those names with the catalog names).
const (
	metaTimeZone         = "timezone"
	metaStatementTimeout = "statement_timeout_ms"
)

// ApplySet handles one SET statement already parsed by
// sqlshim.ParseSetShow, following the recognized-variable table spec.md
// §4.6 and hooks/set_show.rs's try_respond_set_statements give: TIME
// ZONE and statement_timeout get real effect, everything else is stored
// and passed through as an unconditional SET command tag.
func (s *Session) ApplySet(name string, values []string) (tag string, err *SQLStateError) {
	name = strings.ToLower(name)
	value := ""
	if len(values) > 0 {
		value = values[0]
	}

	switch name {
	case "timezone", "time_zone", "time zone":
		s.Set(metaTimeZone, strings.Trim(value, "'\""))
		return "SET", nil
	case "statement_timeout":
		ms, parseErr := parseStatementTimeout(value)
		if parseErr != nil {
			return "", sqlErr(SQLStateSyntaxError, "invalid value for parameter \"statement_timeout\": %q", value)
		}
		s.Set(metaStatementTimeout, strconv.Itoa(ms))
		return "SET", nil
	default:
		// Passthrough: store whatever was given (a later SHOW of the same
		// variable answers with the catalog names, not this value), but
		// don't reject the statement — most session variables the
		// original DataFusion engine exposes have no effect here either.
		s.Set(name, value)
		return "SET", nil
	}
}

// parseStatementTimeout parses the "0", "<n>", "<n>ms", "<n>s", or
// "<n>min" forms PostgreSQL's statement_timeout GUC accepts, following
// hooks/set_show.rs's suffix handling exactly: a bare integer is
// milliseconds, and any non-positive duration means "disabled" (stored
// as 0).
func parseStatementTimeout(value string) (int, error) {
	v := strings.TrimSpace(value)
	switch {
	case strings.HasSuffix(v, "ms"):
		n, err := strconv.Atoi(strings.TrimSuffix(v, "ms"))
		if err != nil {
			return 0, err
		}
		return clampTimeout(n), nil
	case strings.HasSuffix(v, "min"):
		n, err := strconv.Atoi(strings.TrimSuffix(v, "min"))
		if err != nil {
			return 0, err
		}
		return clampTimeout(n * 60 * 1000), nil
	case strings.HasSuffix(v, "s"):
		n, err := strconv.Atoi(strings.TrimSuffix(v, "s"))
		if err != nil {
			return 0, err
		}
		return clampTimeout(n * 1000), nil
	default:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, err
		}
		return clampTimeout(n), nil
	}
}

func clampTimeout(ms int) int {
	if ms <= 0 {
		return 0
	}
	return ms
}

// ApplyShow answers a SHOW statement with the canned single-row, single-
// column response spec.md §4.6 and hooks/set_show.rs's
// try_respond_show_statements both specify: most variables answer from
// a fixed table, timezone and statement_timeout report what SET last
// stored, and anything else answers with the comma-joined catalogNames.
func (s *Session) ApplyShow(name string, catalogNames []string) (column string, value string) {
	name = strings.ToLower(name)
	switch name {
	case "time_zone", "timezone":
		tz, ok := s.Get(metaTimeZone)
		if !ok {
			tz = "UTC"
		}
		return "TimeZone", tz
	case "server_version":
		return "server_version", "15.0 (DataFusion)"
	case "transaction_isolation":
		return "transaction_isolation", "read uncommitted"
	case "search_path":
		return "search_path", "public"
	case "statement_timeout":
		ms, ok := s.Get(metaStatementTimeout)
		if !ok || ms == "0" || ms == "" {
			return "statement_timeout", "0"
		}
		return "statement_timeout", fmt.Sprintf("%sms", ms)
	case "datestyle":
		return "DateStyle", "ISO, MDY"
	default:
		// spec.md §4.6's table assigns every variable not in the fixed
		// rows above the same canned answer: the comma-joined catalog
		// names, under the requested variable's own name as column
		// title. This covers "show catalogs" as an instance of the
		// default row rather than a case of its own. It's a deliberate
		// deviation from the original's mock_show_response fallback
		// (hooks/set_show.rs), which answers an unrecognized SHOW with
		// an empty "unsupported_show_statement" row instead.
		return name, strings.Join(catalogNames, ", ")
	}
}
