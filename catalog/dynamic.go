package catalog

import (
	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/arrowpg/arrowpg/pgtype"
)

// Fixed field values spec.md §4.4 pins for every row of these tables,
// rather than deriving them from anything the engine reports.
const (
	nspOwner      = 10
	relOwner      = 10
	databaseOwner = 10
	utf8Encoding  = 6
	defaultLocale = "en_US.UTF-8"
	defaultTblspc = 1663
)

var pool = memory.NewGoAllocator()

// PgDatabase builds the pg_database record: one row per database the
// source exposes, plus a synthetic "postgres" row when none of them are
// named that (clients that only know how to connect to "postgres" still
// need to find a row for it).
func PgDatabase(src Source, gen *Generation) arrow.Record {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "oid", Type: arrow.PrimitiveTypes.Uint32},
		{Name: "datname", Type: arrow.BinaryTypes.String},
		{Name: "datdba", Type: arrow.PrimitiveTypes.Uint32},
		{Name: "encoding", Type: arrow.PrimitiveTypes.Int32},
		{Name: "datistemplate", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "datallowconn", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "datconnlimit", Type: arrow.PrimitiveTypes.Int32},
		{Name: "dattablespace", Type: arrow.PrimitiveTypes.Uint32},
		{Name: "datcollate", Type: arrow.BinaryTypes.String},
		{Name: "datctype", Type: arrow.BinaryTypes.String},
	}, nil)

	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()

	sawPostgres := false
	for _, db := range src.Databases() {
		if db.Name == "postgres" {
			sawPostgres = true
		}
		appendDatabaseRow(b, gen, db.Name)
	}
	if !sawPostgres {
		appendDatabaseRow(b, gen, "postgres")
	}
	return b.NewRecord()
}

func appendDatabaseRow(b *array.RecordBuilder, gen *Generation, name string) {
	b.Field(0).(*array.Uint32Builder).Append(gen.Get(catalogKey(name)))
	b.Field(1).(*array.StringBuilder).Append(name)
	b.Field(2).(*array.Uint32Builder).Append(databaseOwner)
	b.Field(3).(*array.Int32Builder).Append(utf8Encoding)
	b.Field(4).(*array.BooleanBuilder).Append(false)
	b.Field(5).(*array.BooleanBuilder).Append(true)
	b.Field(6).(*array.Int32Builder).Append(-1)
	b.Field(7).(*array.Uint32Builder).Append(defaultTblspc)
	b.Field(8).(*array.StringBuilder).Append(defaultLocale)
	b.Field(9).(*array.StringBuilder).Append(defaultLocale)
}

// PgNamespace builds the pg_namespace record: one row per schema across
// every database the source exposes.
func PgNamespace(src Source, gen *Generation) arrow.Record {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "oid", Type: arrow.PrimitiveTypes.Uint32},
		{Name: "nspname", Type: arrow.BinaryTypes.String},
		{Name: "nspowner", Type: arrow.PrimitiveTypes.Uint32},
	}, nil)

	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()

	for _, db := range src.Databases() {
		for _, ns := range db.Namespaces {
			b.Field(0).(*array.Uint32Builder).Append(gen.Get(schemaKey(db.Name, ns.Name)))
			b.Field(1).(*array.StringBuilder).Append(ns.Name)
			b.Field(2).(*array.Uint32Builder).Append(nspOwner)
		}
	}
	return b.NewRecord()
}

// systemSchema reports whether namespace name is one of the two schemas
// whose tables are forced to relkind='r' regardless of what the engine
// reports them as (spec.md §4.4).
func systemSchema(name string) bool {
	return name == "pg_catalog" || name == "information_schema"
}

// PgClass builds the pg_class record: one row per table across every
// namespace of every database the source exposes.
func PgClass(src Source, gen *Generation) arrow.Record {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "oid", Type: arrow.PrimitiveTypes.Uint32},
		{Name: "relname", Type: arrow.BinaryTypes.String},
		{Name: "relnamespace", Type: arrow.PrimitiveTypes.Uint32},
		{Name: "relowner", Type: arrow.PrimitiveTypes.Uint32},
		{Name: "relam", Type: arrow.PrimitiveTypes.Uint32},
		{Name: "reltablespace", Type: arrow.PrimitiveTypes.Uint32},
		{Name: "relpages", Type: arrow.PrimitiveTypes.Int32},
		{Name: "reltuples", Type: arrow.PrimitiveTypes.Float32},
		{Name: "reltoastrelid", Type: arrow.PrimitiveTypes.Uint32},
		{Name: "relhasindex", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "relisshared", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "relpersistence", Type: arrow.BinaryTypes.String},
		{Name: "relkind", Type: arrow.BinaryTypes.String},
		{Name: "relnatts", Type: arrow.PrimitiveTypes.Int16},
		{Name: "relhasrules", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "relhastriggers", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "relrowsecurity", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "relispopulated", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "relreplident", Type: arrow.BinaryTypes.String},
	}, nil)

	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()

	for _, db := range src.Databases() {
		for _, ns := range db.Namespaces {
			for _, tbl := range ns.Tables {
				kind := tbl.Kind
				if systemSchema(ns.Name) {
					kind = RelTable
				}
				b.Field(0).(*array.Uint32Builder).Append(gen.Get(tableKey(db.Name, ns.Name, tbl.Name)))
				b.Field(1).(*array.StringBuilder).Append(tbl.Name)
				b.Field(2).(*array.Uint32Builder).Append(gen.Get(schemaKey(db.Name, ns.Name)))
				b.Field(3).(*array.Uint32Builder).Append(relOwner)
				b.Field(4).(*array.Uint32Builder).Append(0)
				b.Field(5).(*array.Uint32Builder).Append(0)
				b.Field(6).(*array.Int32Builder).Append(1)
				b.Field(7).(*array.Float32Builder).Append(0)
				b.Field(8).(*array.Uint32Builder).Append(0)
				b.Field(9).(*array.BooleanBuilder).Append(false)
				b.Field(10).(*array.BooleanBuilder).Append(false)
				b.Field(11).(*array.StringBuilder).Append("p")
				b.Field(12).(*array.StringBuilder).Append(string(rune(kind)))
				b.Field(13).(*array.Int16Builder).Append(int16(len(tbl.Schema.Fields())))
				b.Field(14).(*array.BooleanBuilder).Append(false)
				b.Field(15).(*array.BooleanBuilder).Append(false)
				b.Field(16).(*array.BooleanBuilder).Append(false)
				b.Field(17).(*array.BooleanBuilder).Append(true)
				b.Field(18).(*array.StringBuilder).Append("d")
			}
		}
	}
	return b.NewRecord()
}

// PgAttribute builds the pg_attribute record: one row per column of
// every table, numbered from 1, with wire type information taken from
// pgtype's Arrow<->PostgreSQL map.
func PgAttribute(src Source, gen *Generation) arrow.Record {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "attrelid", Type: arrow.PrimitiveTypes.Uint32},
		{Name: "attname", Type: arrow.BinaryTypes.String},
		{Name: "atttypid", Type: arrow.PrimitiveTypes.Uint32},
		{Name: "attlen", Type: arrow.PrimitiveTypes.Int16},
		{Name: "attnum", Type: arrow.PrimitiveTypes.Int16},
		{Name: "atttypmod", Type: arrow.PrimitiveTypes.Int32},
		{Name: "attbyval", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "attalign", Type: arrow.BinaryTypes.String},
		{Name: "attstorage", Type: arrow.BinaryTypes.String},
		{Name: "attnotnull", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "atthasdef", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "attisdropped", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "attislocal", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "attcollation", Type: arrow.PrimitiveTypes.Uint32},
	}, nil)

	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()

	for _, db := range src.Databases() {
		for _, ns := range db.Namespaces {
			for _, tbl := range ns.Tables {
				relOid := gen.Get(tableKey(db.Name, ns.Name, tbl.Name))
				for i, f := range tbl.Schema.Fields() {
					info, err := pgtype.Lookup(f.Type)
					if err != nil {
						continue
					}
					b.Field(0).(*array.Uint32Builder).Append(relOid)
					b.Field(1).(*array.StringBuilder).Append(f.Name)
					b.Field(2).(*array.Uint32Builder).Append(uint32(info.OID))
					b.Field(3).(*array.Int16Builder).Append(info.Len)
					b.Field(4).(*array.Int16Builder).Append(int16(i + 1))
					b.Field(5).(*array.Int32Builder).Append(-1)
					b.Field(6).(*array.BooleanBuilder).Append(info.ByVal)
					b.Field(7).(*array.StringBuilder).Append(string(rune(info.Align)))
					b.Field(8).(*array.StringBuilder).Append(string(rune(info.Storage)))
					b.Field(9).(*array.BooleanBuilder).Append(!f.Nullable)
					b.Field(10).(*array.BooleanBuilder).Append(false)
					b.Field(11).(*array.BooleanBuilder).Append(false)
					b.Field(12).(*array.BooleanBuilder).Append(true)
					b.Field(13).(*array.Uint32Builder).Append(0)
				}
			}
		}
	}
	return b.NewRecord()
}
