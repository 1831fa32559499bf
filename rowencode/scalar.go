package rowencode

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"

	"github.com/arrowpg/arrowpg/pgtype"
)

// encodeScalar handles every Arrow leaf type that isn't a list or struct.
// Each branch produces a string (text format) or a []byte (binary format);
// the two are kept side by side per type, mirroring how the reference
// encoder this package is grounded on dispatches on FieldFormat per type.
func encodeScalar(format pgtype.FormatCode, info pgtype.Info, dt arrow.DataType, arr arrow.Array, idx int) (any, error) {
	binaryFormat := format == pgtype.BinaryFormat

	switch a := arr.(type) {
	case *array.Boolean:
		v := a.Value(idx)
		if binaryFormat {
			if v {
				return []byte{1}, nil
			}
			return []byte{0}, nil
		}
		if v {
			return "t", nil
		}
		return "f", nil

	case *array.Int8:
		// Arrow int8 maps onto PostgreSQL's 1-byte "char" type (pgtype's
		// oid.T_char entry), not int2 — the single byte is the wire value.
		return encodeInt(binaryFormat, int64(a.Value(idx)), 1)
	case *array.Uint8:
		return encodeInt(binaryFormat, int64(a.Value(idx)), 2)
	case *array.Int16:
		return encodeInt(binaryFormat, int64(a.Value(idx)), 2)
	case *array.Uint16:
		return encodeInt(binaryFormat, int64(a.Value(idx)), 4)
	case *array.Int32:
		return encodeInt(binaryFormat, int64(a.Value(idx)), 4)
	case *array.Uint32:
		return encodeInt(binaryFormat, int64(a.Value(idx)), 8)
	case *array.Int64:
		return encodeInt(binaryFormat, a.Value(idx), 8)
	case *array.Uint64:
		// uint64's full range exceeds int8; carry it as numeric, per the
		// type map's oid.T_numeric mapping for arrow.UINT64.
		u := new(big.Int).SetUint64(a.Value(idx))
		if binaryFormat {
			return encodeNumericBinary(u, 0), nil
		}
		return encodeNumericText(u, 0), nil

	case *array.Float32:
		return encodeFloat(binaryFormat, float64(a.Value(idx)), 4)
	case *array.Float64:
		return encodeFloat(binaryFormat, a.Value(idx), 8)

	case *array.String:
		return encodeText(binaryFormat, a.Value(idx)), nil
	case *array.LargeString:
		return encodeText(binaryFormat, a.Value(idx)), nil
	case *array.StringView:
		return encodeText(binaryFormat, a.Value(idx)), nil

	case *array.Binary:
		return encodeBytea(binaryFormat, a.Value(idx)), nil
	case *array.LargeBinary:
		return encodeBytea(binaryFormat, a.Value(idx)), nil
	case *array.BinaryView:
		return encodeBytea(binaryFormat, a.Value(idx)), nil

	case *array.Date32:
		return encodeDate(binaryFormat, int32(a.Value(idx)))
	case *array.Date64:
		days := int32(int64(a.Value(idx)) / 86_400_000)
		return encodeDate(binaryFormat, days)

	case *array.Time32:
		t := dt.(*arrow.Time32Type)
		return encodeTime(binaryFormat, time32Micros(t.Unit, a.Value(idx)))
	case *array.Time64:
		t := dt.(*arrow.Time64Type)
		return encodeTime(binaryFormat, time64Micros(t.Unit, a.Value(idx)))

	case *array.Timestamp:
		t := dt.(*arrow.TimestampType)
		return encodeTimestamp(binaryFormat, t, a.Value(idx))

	case *array.Duration:
		t := dt.(*arrow.DurationType)
		return encodeInterval(binaryFormat, durationMicros(t.Unit, a.Value(idx)), 0, 0)
	case *array.MonthInterval:
		return encodeInterval(binaryFormat, 0, 0, int32(a.Value(idx)))
	case *array.DayTimeInterval:
		v := a.Value(idx)
		return encodeInterval(binaryFormat, int64(v.Milliseconds)*1000, int32(v.Days), 0)
	case *array.MonthDayNanoInterval:
		v := a.Value(idx)
		return encodeInterval(binaryFormat, v.Nanoseconds/1000, v.Days, v.Months)

	case *array.Decimal128:
		t := dt.(*arrow.Decimal128Type)
		u := a.Value(idx).BigInt()
		if binaryFormat {
			return encodeNumericBinary(u, t.Scale), nil
		}
		return encodeNumericText(u, t.Scale), nil
	case *array.Decimal256:
		t := dt.(*arrow.Decimal256Type)
		u := a.Value(idx).BigInt()
		if binaryFormat {
			return encodeNumericBinary(u, t.Scale), nil
		}
		return encodeNumericText(u, t.Scale), nil
	}

	// Unmapped leaf kinds (map, union, dictionary, null) fall back to the
	// placeholder text representation pgtype.Lookup already assigned them.
	return arrayValue(arr, idx), nil
}

func encodeInt(binaryFormat bool, v int64, width int) (any, error) {
	if binaryFormat {
		buf := make([]byte, width)
		switch width {
		case 1:
			buf[0] = byte(v)
		case 2:
			binary.BigEndian.PutUint16(buf, uint16(int16(v)))
		case 4:
			binary.BigEndian.PutUint32(buf, uint32(int32(v)))
		case 8:
			binary.BigEndian.PutUint64(buf, uint64(v))
		default:
			return nil, fmt.Errorf("rowencode: unsupported integer width %d", width)
		}
		return buf, nil
	}
	return strconv.FormatInt(v, 10), nil
}

func encodeFloat(binaryFormat bool, v float64, width int) (any, error) {
	if binaryFormat {
		buf := make([]byte, width)
		if width == 4 {
			binary.BigEndian.PutUint32(buf, math.Float32bits(float32(v)))
		} else {
			binary.BigEndian.PutUint64(buf, math.Float64bits(v))
		}
		return buf, nil
	}
	return strconv.FormatFloat(v, 'g', -1, 64), nil
}

func encodeText(binaryFormat bool, s string) any {
	if binaryFormat {
		return []byte(s)
	}
	return s
}

func encodeBytea(binaryFormat bool, b []byte) any {
	if binaryFormat {
		return append([]byte(nil), b...)
	}
	out := make([]byte, 2+2*len(b))
	out[0], out[1] = '\\', 'x'
	const hextable = "0123456789abcdef"
	for i, c := range b {
		out[2+2*i] = hextable[c>>4]
		out[3+2*i] = hextable[c&0x0f]
	}
	return string(out)
}

func arrayValue(arr arrow.Array, idx int) string {
	if sv, ok := arr.(interface{ ValueStr(int) string }); ok {
		return sv.ValueStr(idx)
	}
	return fmt.Sprintf("<%s>", arr.DataType())
}
