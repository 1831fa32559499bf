package pgtype

import (
	"testing"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/lib/pq/oid"
)

func TestLookupTimestampWithoutTimeZone(t *testing.T) {
	info, err := Lookup(&arrow.TimestampType{Unit: arrow.Microsecond})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if info.OID != oid.T_timestamp {
		t.Errorf("OID = %v, want T_timestamp", info.OID)
	}
}

func TestLookupTimestampWithTimeZone(t *testing.T) {
	info, err := Lookup(&arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if info.OID != oid.T_timestamptz {
		t.Errorf("OID = %v, want T_timestamptz", info.OID)
	}
}

func TestLookupInt32(t *testing.T) {
	info, err := Lookup(arrow.PrimitiveTypes.Int32)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if info.OID != oid.T_int4 || info.Kind != KindScalar {
		t.Errorf("info = %+v", info)
	}
}

func TestLookupListOfInt64(t *testing.T) {
	info, err := Lookup(arrow.ListOf(arrow.PrimitiveTypes.Int64))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if info.Kind != KindArray || info.OID != oid.T__int8 {
		t.Errorf("info = %+v", info)
	}
}

func TestBuildFieldInfosDefaultsToTextFormat(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int32},
	}, nil)
	fields, err := BuildFieldInfos(schema, nil)
	if err != nil {
		t.Fatalf("BuildFieldInfos: %v", err)
	}
	if len(fields) != 1 || fields[0].Format != TextFormat {
		t.Errorf("fields = %+v", fields)
	}
}
