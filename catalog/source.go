package catalog

import "github.com/apache/arrow/go/v18/arrow"

// RelKind mirrors the single-character pg_class.relkind values this
// surrogate needs to distinguish: ordinary tables and views.
type RelKind byte

const (
	RelTable RelKind = 'r'
	RelView  RelKind = 'v'
)

// Table is one relation as the engine's live catalog exposes it: a name,
// whether it behaves like a table or a view, and the Arrow schema that
// describes its columns (pg_attribute is derived entirely from this).
type Table struct {
	Name   string
	Kind   RelKind
	Schema *arrow.Schema
}

// Namespace is one schema within a catalog, holding zero or more tables.
type Namespace struct {
	Name   string
	Tables []Table
}

// Database is one top-level catalog the engine exposes, holding zero or
// more namespaces. Most embedders expose exactly one, named "postgres" or
// after the configured catalog name.
type Database struct {
	Name       string
	Namespaces []Namespace
}

// Source is the live-catalog view pg_class/pg_namespace/pg_database/
// pg_attribute are generated from on every scan. engine.Engine does not
// include it; fileengine.Engine implements it alongside engine.Engine. It
// is declared here rather than imported from engine to
// keep catalog free of a dependency on the engine package it is wired
// into from the other direction (wireserver constructs both and passes
// the engine in wherever a Source is expected).
type Source interface {
	Databases() []Database
}
