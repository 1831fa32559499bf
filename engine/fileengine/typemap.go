package fileengine

import (
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/lib/pq/oid"
)

// pgTypeNameToArrow maps the handful of PostgreSQL type names a CAST or
// parameter annotation can name in the statements this engine plans
// (spec.md's scenarios only ever cast to int4/text) onto the Arrow type
// fileengine's evaluator and builders use internally.
var pgTypeNameToArrow = map[string]arrow.DataType{
	"int2":    arrow.PrimitiveTypes.Int16,
	"int4":    arrow.PrimitiveTypes.Int32,
	"int":     arrow.PrimitiveTypes.Int32,
	"integer": arrow.PrimitiveTypes.Int32,
	"int8":    arrow.PrimitiveTypes.Int64,
	"bigint":  arrow.PrimitiveTypes.Int64,
	"float4":  arrow.PrimitiveTypes.Float32,
	"float8":  arrow.PrimitiveTypes.Float64,
	"double":  arrow.PrimitiveTypes.Float64,
	"bool":    arrow.FixedWidthTypes.Boolean,
	"boolean": arrow.FixedWidthTypes.Boolean,
	"text":    arrow.BinaryTypes.String,
	"varchar": arrow.BinaryTypes.String,
	"bpchar":  arrow.BinaryTypes.String,
}

// pgTypeNameToOID covers the same set of names for Describe's
// placeholder-OID inference step (Cast(placeholder, T) -> OID of T).
var pgTypeNameToOID = map[string]uint32{
	"int2":    uint32(oid.T_int2),
	"int4":    uint32(oid.T_int4),
	"int":     uint32(oid.T_int4),
	"integer": uint32(oid.T_int4),
	"int8":    uint32(oid.T_int8),
	"bigint":  uint32(oid.T_int8),
	"float4":  uint32(oid.T_float4),
	"float8":  uint32(oid.T_float8),
	"double":  uint32(oid.T_float8),
	"bool":    uint32(oid.T_bool),
	"boolean": uint32(oid.T_bool),
	"text":    uint32(oid.T_text),
	"varchar": uint32(oid.T_text),
	"bpchar":  uint32(oid.T_text),
}

// unknownOID is the fallback spec.md's Describe(statement) rule names
// for a placeholder whose type cannot be inferred from the plan.
const unknownOID uint32 = 705

func arrowTypeForPGName(name string) (arrow.DataType, bool) {
	t, ok := pgTypeNameToArrow[strings.ToLower(name)]
	return t, ok
}

func oidForPGName(name string) (uint32, bool) {
	o, ok := pgTypeNameToOID[strings.ToLower(name)]
	return o, ok
}
