package rowencode

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"

	"github.com/arrowpg/arrowpg/pgtype"
)

// encodeList encodes one Arrow list value as a PostgreSQL array: either the
// binary one-dimensional array wire format (ndim, flags, element oid, then
// per-dimension size/lower-bound, then per-element length-prefixed payload)
// or the text "{a,b,c}" form, quoting elements whose text form needs it.
func encodeList(format pgtype.FormatCode, dt arrow.DataType, arr arrow.Array, idx int) (any, error) {
	backing, start, end, elemType, err := listWindow(dt, arr, idx)
	if err != nil {
		return nil, err
	}
	elemInfo, err := pgtype.Lookup(elemType)
	if err != nil {
		return nil, err
	}

	if format == pgtype.BinaryFormat {
		return encodeListBinary(elemInfo, elemType, backing, start, end)
	}
	return encodeListText(elemInfo, elemType, backing, start, end)
}

func listWindow(dt arrow.DataType, arr arrow.Array, idx int) (backing arrow.Array, start, end int, elemType arrow.DataType, err error) {
	switch la := arr.(type) {
	case *array.List:
		s, e := la.ValueOffsets(idx)
		return la.ListValues(), int(s), int(e), dt.(*arrow.ListType).Elem(), nil
	case *array.LargeList:
		s, e := la.ValueOffsets(idx)
		return la.ListValues(), int(s), int(e), dt.(*arrow.LargeListType).Elem(), nil
	case *array.FixedSizeList:
		n := int(dt.(*arrow.FixedSizeListType).Len())
		s := idx * n
		return la.ListValues(), s, s + n, dt.(*arrow.FixedSizeListType).Elem(), nil
	default:
		return nil, 0, 0, nil, fmt.Errorf("rowencode: unsupported list array type %T", arr)
	}
}

func encodeListBinary(elemInfo pgtype.Info, elemType arrow.DataType, backing arrow.Array, start, end int) ([]byte, error) {
	var buf []byte
	put32 := func(v int32) {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(v))
		buf = append(buf, b[:]...)
	}

	flags := int32(0)
	for i := start; i < end; i++ {
		if backing.IsNull(i) {
			flags = 1
			break
		}
	}

	put32(1) // ndim
	put32(flags)
	put32(int32(elemInfo.OID))
	put32(int32(end - start))
	put32(1) // lower bound

	for i := start; i < end; i++ {
		v, err := Encode(pgtype.BinaryFormat, elemInfo, elemType, backing, i)
		if err != nil {
			return nil, err
		}
		if v == nil {
			put32(-1)
			continue
		}
		b, ok := v.([]byte)
		if !ok {
			return nil, fmt.Errorf("rowencode: array element encoder returned %T, want []byte", v)
		}
		put32(int32(len(b)))
		buf = append(buf, b...)
	}
	return buf, nil
}

func encodeListText(elemInfo pgtype.Info, elemType arrow.DataType, backing arrow.Array, start, end int) (string, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	for i := start; i < end; i++ {
		if i > start {
			sb.WriteByte(',')
		}
		if backing.IsNull(i) {
			sb.WriteString("NULL")
			continue
		}
		v, err := Encode(pgtype.TextFormat, elemInfo, elemType, backing, i)
		if err != nil {
			return "", err
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("rowencode: array element encoder returned %T, want string", v)
		}
		sb.WriteString(quoteArrayElement(s))
	}
	sb.WriteByte('}')
	return sb.String(), nil
}

func quoteArrayElement(s string) string {
	if s == "" || needsArrayQuote(s) {
		var sb strings.Builder
		sb.WriteByte('"')
		for _, r := range s {
			if r == '"' || r == '\\' {
				sb.WriteByte('\\')
			}
			sb.WriteRune(r)
		}
		sb.WriteByte('"')
		return sb.String()
	}
	return s
}

func needsArrayQuote(s string) bool {
	if strings.EqualFold(s, "null") {
		return true
	}
	return strings.ContainsAny(s, " ,{}\"\\")
}
