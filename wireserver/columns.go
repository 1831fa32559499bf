package wireserver

import (
	"github.com/apache/arrow/go/v18/arrow"
	wire "github.com/jeroenrinzema/psql-wire"
	"github.com/lib/pq/oid"

	"github.com/arrowpg/arrowpg/engine"
	"github.com/arrowpg/arrowpg/pgtype"
)

// columnsFromFields builds psql-wire's RowDescription input from an
// engine result schema, via pgtype.Lookup — the same OID table catalog and
// rowencode already depend on, rather than a second ad hoc Arrow-to-OID
// switch like the teacher's own arrowTypeToPgOid.
//
// Known risk: wire.Column's Width field's exact integer type was not
// observed directly in the retrieved corpus (the teacher only ever writes
// the untyped literal 256 into it); int32 is used here as the best match
// for a typlen-shaped field.
func columnsFromFields(fields []engine.Field) (wire.Columns, error) {
	cols := make(wire.Columns, len(fields))
	for i, f := range fields {
		info, err := pgtype.Lookup(f.Type)
		if err != nil {
			return nil, err
		}
		cols[i] = wire.Column{
			Table: 0,
			Name:  f.Name,
			Oid:   info.OID,
			Width: int16(info.Len),
		}
	}
	return cols, nil
}

// arrowSchemaOf rebuilds an *arrow.Schema from an engine's Describe
// output, needed downstream for rowencode.EncodeRow, which takes a schema
// rather than a []engine.Field.
func arrowSchemaOf(fields []engine.Field) *arrow.Schema {
	out := make([]arrow.Field, len(fields))
	for i, f := range fields {
		out[i] = arrow.Field{Name: f.Name, Type: f.Type, Nullable: true}
	}
	return arrow.NewSchema(out, nil)
}

// toOidSlice converts Describe's placeholder OIDs to the oid.Oid slice
// wire.WithParameters expects.
func toOidSlice(oids []uint32) []oid.Oid {
	out := make([]oid.Oid, len(oids))
	for i, o := range oids {
		out[i] = oid.Oid(o)
	}
	return out
}
