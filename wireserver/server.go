// Package wireserver wires engine.Engine, session.Session, and auth.Source
// into a running PostgreSQL wire-protocol listener. It supplies exactly one
// callback to github.com/jeroenrinzema/psql-wire — ParseFn — the same shape
// the teacher's cmd/logfire_pg/main.go registers as wireHandler; the library
// itself owns the Parse/Bind/Describe/Execute/Sync state machine, named
// statement and portal caching, and ReadyForQuery sequencing (see
// DESIGN.md's wireserver entry for the command.go.go read this is grounded
// on).
package wireserver

import (
	"log"
	"os"

	wire "github.com/jeroenrinzema/psql-wire"

	"github.com/arrowpg/arrowpg/auth"
	"github.com/arrowpg/arrowpg/catalog"
	"github.com/arrowpg/arrowpg/engine"
)

// Config configures a Server beyond the Engine it serves.
type Config struct {
	// AuthSource authenticates ClearTextPassword credentials. A nil
	// AuthSource accepts any username/password, matching
	// auth.DefaultConfig's permissive posture for a server started with
	// no explicit --auth-require-passwords.
	AuthSource auth.Source
	// Version is the server_version string reported during startup
	// (wire.Version). SHOW server_version does not read it; it answers
	// from session.ApplyShow's fixed table.
	Version string
	Logger  *log.Logger
	// TODO: no psql-wire TLS-handshake option was confirmed against this
	// dependency version; wire up a TLSConfig field once one is.
}

// Server answers PostgreSQL wire-protocol connections by planning,
// describing, binding, and executing statements against one engine.Engine,
// dispatching SET/SHOW/transaction-control statements against a
// per-connection session.Session instead.
type Server struct {
	wire        *wire.Server
	eng         engine.Engine
	authSrc     auth.Source
	permChecker auth.PermissionChecker // nil when AuthSource does not implement it
	catalogSrc  catalog.Source         // nil when eng does not implement catalog.Source
	catalog     *catalog.Provider
	logger      *log.Logger
	version     string
}

// NewServer builds a Server over eng. If eng also implements
// engine.CatalogRegistrar, the pg_catalog surrogate tables
// (pg_class, pg_attribute, pg_namespace, pg_database, and the ~60 other
// fixed names catalog.Provider answers for) are registered into it
// immediately, so introspection queries run through the same planner as
// every other query.
func NewServer(eng engine.Engine, cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stdout, "[arrowpg] ", log.LstdFlags)
	}
	if cfg.Version == "" {
		cfg.Version = "15.0"
	}

	s := &Server{
		eng:     eng,
		authSrc: cfg.AuthSource,
		logger:  cfg.Logger,
		version: cfg.Version,
		catalog: catalog.NewProvider(),
	}
	if src, ok := eng.(catalog.Source); ok {
		s.catalogSrc = src
	}
	if pc, ok := cfg.AuthSource.(auth.PermissionChecker); ok {
		s.permChecker = pc
	}

	ws, err := wire.NewServer(
		s.parse,
		wire.SessionAuthStrategy(wire.ClearTextPassword(s.auth)),
		wire.SessionMiddleware(s.sessionMiddleware),
		wire.TerminateConn(s.terminateConn),
		wire.Version(cfg.Version),
	)
	if err != nil {
		return nil, err
	}
	s.wire = ws

	s.refreshCatalog()
	return s, nil
}

// ListenAndServe starts accepting connections on addr ("host:port").
func (s *Server) ListenAndServe(addr string) error {
	return s.wire.ListenAndServe(addr)
}

// Provider exposes the pg_catalog registry so cmd/arrowpg-server can load
// --catalog-ipc-dir overrides before the first connection arrives.
func (s *Server) Provider() *catalog.Provider { return s.catalog }

// RefreshCatalog re-registers every pg_catalog surrogate table into the
// engine; cmd/arrowpg-server calls this after Provider().LoadIPCOverrides.
func (s *Server) RefreshCatalog() { s.refreshCatalog() }
