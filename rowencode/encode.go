// Package rowencode turns one Arrow array value into the exact byte
// representation PostgreSQL clients expect on the wire, for both the text
// and binary per-column formats. Every encoder returns a value already fit
// for wire.DataWriter.Row([]any): nil for NULL, a string for text format, or
// a []byte laid out in PostgreSQL's binary wire format for binary format.
// Nothing here leans on psql-wire's own value marshaling — rowencode owns
// the wire representation end to end, the way the reference row/list/struct
// encoders this package is grounded on own it for their pgwire crate.
package rowencode

import (
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"

	"github.com/arrowpg/arrowpg/pgtype"
)

// Encode converts the value at row idx of arr into a wire-ready value.
// info must come from pgtype.Lookup(dt) for the same dt.
func Encode(format pgtype.FormatCode, info pgtype.Info, dt arrow.DataType, arr arrow.Array, idx int) (any, error) {
	if arr.IsNull(idx) {
		return nil, nil
	}

	if ext, ok := dt.(arrow.ExtensionType); ok {
		extArr, ok := arr.(array.ExtensionArray)
		if !ok {
			return nil, fmt.Errorf("rowencode: extension type %q without an ExtensionArray", ext.ExtensionName())
		}
		if info.Kind == pgtype.KindGeometry {
			return encodeGeometry(format, ext.ExtensionName(), extArr.Storage(), idx)
		}
		storageInfo, err := pgtype.Lookup(ext.StorageType())
		if err != nil {
			return nil, err
		}
		return Encode(format, storageInfo, ext.StorageType(), extArr.Storage(), idx)
	}

	switch info.Kind {
	case pgtype.KindArray:
		return encodeList(format, dt, arr, idx)
	case pgtype.KindComposite:
		return encodeStruct(format, dt, arr, idx)
	default:
		return encodeScalar(format, info, dt, arr, idx)
	}
}

// EncodeRow fills dst (sized to len(schema.Fields())) with wire-ready values
// for one record batch row, per the field-info format selected for each
// column. Callers pass dst to wire.DataWriter.Row.
func EncodeRow(dst []any, schema *arrow.Schema, fields []pgtype.FieldInfo, cols []arrow.Array, row int) error {
	for i, f := range schema.Fields() {
		info, err := pgtype.Lookup(f.Type)
		if err != nil {
			return fmt.Errorf("column %q: %w", f.Name, err)
		}
		v, err := Encode(fields[i].Format, info, f.Type, cols[i], row)
		if err != nil {
			return fmt.Errorf("column %q: %w", f.Name, err)
		}
		dst[i] = v
	}
	return nil
}
