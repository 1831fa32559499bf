package rowencode

import (
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/arrowpg/arrowpg/pgtype"
)

// encodeGeometry bridges a GeoArrow-extension column to PostgreSQL's EWKB
// wire representation. Only the storage shapes actually produced by the
// file-backed reference engine are handled here: WKB-encoded binary storage
// (pass-through re-encode, so a malformed source blob is caught early) and
// the two-float point struct/fixed-size-list layout. Anything else reports
// a clear unsupported-geometry error instead of guessing at a layout.
func encodeGeometry(format pgtype.FormatCode, extName string, storage arrow.Array, idx int) (any, error) {
	geom, err := decodeGeometry(extName, storage, idx)
	if err != nil {
		return nil, err
	}

	raw, err := wkb.Marshal(geom)
	if err != nil {
		return nil, fmt.Errorf("rowencode: encode %s as WKB: %w", extName, err)
	}

	// EWKB is WKB with the SRID bit set on the type word and the SRID
	// appended right after it; the reference engine doesn't carry CRS
	// metadata today so every geometry is emitted SRID-less (type word
	// unmodified), which PostGIS clients treat as "unknown SRID".
	if format == pgtype.BinaryFormat {
		return raw, nil
	}

	hexStr := make([]byte, 2+2*len(raw))
	hexStr[0], hexStr[1] = '\\', 'x'
	const hextable = "0123456789abcdef"
	for i, c := range raw {
		hexStr[2+2*i] = hextable[c>>4]
		hexStr[3+2*i] = hextable[c&0x0f]
	}
	return string(hexStr), nil
}

func decodeGeometry(extName string, storage arrow.Array, idx int) (orb.Geometry, error) {
	switch s := storage.(type) {
	case *array.Binary:
		geom, err := wkb.Unmarshal(s.Value(idx))
		if err != nil {
			return nil, fmt.Errorf("rowencode: decode %s WKB storage: %w", extName, err)
		}
		return geom, nil
	case *array.LargeBinary:
		geom, err := wkb.Unmarshal(s.Value(idx))
		if err != nil {
			return nil, fmt.Errorf("rowencode: decode %s WKB storage: %w", extName, err)
		}
		return geom, nil
	case *array.FixedSizeList:
		if extName != "geoarrow.point" {
			break
		}
		ft, ok := s.DataType().(*arrow.FixedSizeListType)
		if !ok || ft.Len() != 2 {
			break
		}
		coords, ok := s.ListValues().(*array.Float64)
		if !ok {
			break
		}
		base := idx * 2
		return orb.Point{coords.Value(base), coords.Value(base + 1)}, nil
	case *array.Struct:
		if extName != "geoarrow.point" {
			break
		}
		st, ok := s.DataType().(*arrow.StructType)
		if !ok || st.NumFields() != 2 {
			break
		}
		x, okx := s.Field(0).(*array.Float64)
		y, oky := s.Field(1).(*array.Float64)
		if !okx || !oky {
			break
		}
		return orb.Point{x.Value(idx), y.Value(idx)}, nil
	}

	return nil, fmt.Errorf("rowencode: unsupported geometry storage layout %T for %s", storage, extName)
}
