package catalog

import (
	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
)

// pg_views and pg_matviews are not in spec.md §4.4's named dynamic-table
// list, but datafusion-postgres's pg_catalog/pg_views.rs serves both as
// permanently-empty tables with a fixed schema alongside the dynamic
// pg_class/pg_namespace tables — cheap to add and real clients (psql's
// \dv, most GUI "Views" tree nodes) probe them, so they are supplemented
// here rather than left to fail with "relation does not exist".
func init() {
	staticTables["pg_views"] = emptyRecord(arrow.NewSchema([]arrow.Field{
		{Name: "schemaname", Type: arrow.BinaryTypes.String},
		{Name: "viewname", Type: arrow.BinaryTypes.String},
		{Name: "viewowner", Type: arrow.BinaryTypes.String},
		{Name: "definition", Type: arrow.BinaryTypes.String},
	}, nil))

	staticTables["pg_matviews"] = emptyRecord(arrow.NewSchema([]arrow.Field{
		{Name: "schemaname", Type: arrow.BinaryTypes.String},
		{Name: "matviewname", Type: arrow.BinaryTypes.String},
		{Name: "matviewowner", Type: arrow.BinaryTypes.String},
		{Name: "tablespace", Type: arrow.BinaryTypes.String},
		{Name: "hasindexes", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "ispopulated", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "definition", Type: arrow.BinaryTypes.String},
	}, nil))
}

func emptyRecord(schema *arrow.Schema) arrow.Record {
	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()
	return b.NewRecord()
}
