package session

import pg_query "github.com/pganalyze/pg_query_go/v5"

// Prepare stores ps under name, replacing whatever was previously
// prepared there. The unnamed statement (name == "") is replaced on
// every Parse, per spec.md's Glossary entry for "Prepared statement /
// portal" — callers don't need to special-case it, a plain map write
// already has that behavior.
func (s *Session) Prepare(name string, sql string, tree *pg_query.RawStmt, paramOIDs []uint32, plan any) {
	s.Statements[name] = &PreparedStatement{SQL: sql, Tree: tree, ParamOIDs: paramOIDs, Plan: plan}
}

// Statement looks up a prepared statement by name.
func (s *Session) Statement(name string) (*PreparedStatement, bool) {
	ps, ok := s.Statements[name]
	return ps, ok
}

// CloseStatement drops a prepared statement, per the wire protocol's
// Close message.
func (s *Session) CloseStatement(name string) {
	delete(s.Statements, name)
}

// BindPortal stores a bound plan under a portal name, as Bind produces
// it from a named prepared statement.
func (s *Session) BindPortal(portalName, statementName string, boundPlan any, resultFormats []int16) {
	s.Portals[portalName] = &Portal{
		Statement:     statementName,
		BoundPlan:     boundPlan,
		ResultFormats: resultFormats,
	}
}

// GetPortal looks up a bound portal by name.
func (s *Session) GetPortal(name string) (*Portal, bool) {
	p, ok := s.Portals[name]
	return p, ok
}

// ClosePortal drops a portal, per the wire protocol's Close message.
func (s *Session) ClosePortal(name string) {
	delete(s.Portals, name)
}
