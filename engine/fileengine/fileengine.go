// Package fileengine is the reference engine.Engine implementation:
// tables are loaded once from CSV/JSON/Arrow-IPC/Parquet files named on
// the command line and kept fully materialized in memory, and a small
// AST-walking planner handles the subset of SELECT/INSERT spec.md's
// end-to-end scenarios exercise. It is not a general-purpose SQL
// engine — see DESIGN.md for exactly what it does and does not cover.
package fileengine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/arrowpg/arrowpg/catalog"
)

// catalogName and schemaName are the fixed catalog/schema every table
// fileengine registers into. "datafusion" matches the real
// datafusion::execution::context::SessionContext default catalog name;
// "public" matches hooks/set_show.rs's default_schema for search_path.
const (
	catalogName = "datafusion"
	schemaName  = "public"
)

// Table is one registered, fully in-memory relation. Records is a slice
// of Arrow batches rather than one big Record so INSERT can append a new
// chunk without rebuilding existing data.
type Table struct {
	Name    string
	Schema  *arrow.Schema
	mu      sync.RWMutex
	Records []arrow.Record
}

func newTable(name string, schema *arrow.Schema) *Table {
	return &Table{Name: name, Schema: schema}
}

// Snapshot returns the table's current batches. Callers must not mutate
// the returned slice or its records.
func (t *Table) Snapshot() []arrow.Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]arrow.Record, len(t.Records))
	copy(out, t.Records)
	return out
}

func (t *Table) append(rec arrow.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec.Retain()
	t.Records = append(t.Records, rec)
}

// Engine holds every registered table and implements both engine.Engine
// (Prepare/Describe/Bind/Execute, in plan.go and exec.go) and
// catalog.Source, so the same registry backs both SQL execution and the
// pg_class/pg_attribute catalog surrogate.
type Engine struct {
	pool   memory.Allocator
	mu     sync.RWMutex
	tables map[string]*Table // keyed by the name passed to Register, case preserved
}

// New returns an Engine with no tables registered.
func New() *Engine {
	return &Engine{pool: memory.NewGoAllocator(), tables: make(map[string]*Table)}
}

// Register adds a fully-loaded table under name, replacing any existing
// table of the same name. The loaders in load_*.go call this once per
// --csv/--json/--arrow/--parquet flag.
func (e *Engine) Register(name string, schema *arrow.Schema, batches []arrow.Record) {
	t := newTable(name, schema)
	for _, b := range batches {
		t.append(b)
	}
	e.mu.Lock()
	e.tables[name] = t
	e.mu.Unlock()
}

// Table looks up a registered table by name (case-sensitive, matching
// the file stem it was registered under).
func (e *Engine) Table(name string) (*Table, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.tables[name]
	return t, ok
}

// undefinedTable is the error Prepare/exec return for an unknown
// relation. It carries only the relation name, no SQLSTATE: session.WireError
// does not special-case it, so it reaches the client with the generic
// Uncategorized code rather than 42P01.
type undefinedTable struct{ name string }

func (e *undefinedTable) Error() string { return fmt.Sprintf("relation %q does not exist", e.name) }

// Databases implements catalog.Source: fileengine exposes exactly one
// database ("datafusion") with one schema ("public") containing every
// registered table as a base table (no views are ever registered by a
// loader, so RelKind is always RelTable).
func (e *Engine) Databases() []catalog.Database {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.tables))
	for name := range e.tables {
		names = append(names, name)
	}
	sort.Strings(names)

	tables := make([]catalog.Table, 0, len(names))
	for _, name := range names {
		t := e.tables[name]
		tables = append(tables, catalog.Table{Name: t.Name, Kind: catalog.RelTable, Schema: t.Schema})
	}
	return []catalog.Database{{
		Name: catalogName,
		Namespaces: []catalog.Namespace{
			{Name: schemaName, Tables: tables},
		},
	}}
}
