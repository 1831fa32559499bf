package engine

import "github.com/apache/arrow/go/v18/arrow"

// CatalogRegistrar is implemented by an Engine that can absorb
// pre-built record batches under a table name, the same way
// engine/fileengine's file loaders populate it. wireserver uses this,
// via an optional type assertion (the same style command.go.go's own
// `pcCopyIn, ok := srv.Portals.(PortalCacheCopyIn)` uses for an optional
// capability), to materialize the pg_catalog surrogate tables into
// whatever Engine is running so ordinary SELECT/WHERE queries against
// pg_class, pg_attribute, and friends are answered by the same planner
// that answers every other query.
type CatalogRegistrar interface {
	Register(name string, schema *arrow.Schema, batches []arrow.Record)
}
