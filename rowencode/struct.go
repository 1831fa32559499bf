package rowencode

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"

	"github.com/arrowpg/arrowpg/pgtype"
)

// encodeStruct encodes one Arrow struct value as a PostgreSQL composite
// (record) type: binary is a field count followed by per-field
// (oid, length, payload); text is "(v1,v2,...)" with per-field quoting.
func encodeStruct(format pgtype.FormatCode, dt arrow.DataType, arr arrow.Array, idx int) (any, error) {
	sa, ok := arr.(*array.Struct)
	if !ok {
		return nil, fmt.Errorf("rowencode: unsupported struct array type %T", arr)
	}
	st := dt.(*arrow.StructType)

	if format == pgtype.BinaryFormat {
		return encodeStructBinary(st, sa, idx)
	}
	return encodeStructText(st, sa, idx)
}

func encodeStructBinary(st *arrow.StructType, sa *array.Struct, idx int) ([]byte, error) {
	var buf []byte
	put32 := func(v int32) {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(v))
		buf = append(buf, b[:]...)
	}

	fields := st.Fields()
	put32(int32(len(fields)))
	for i, f := range fields {
		info, err := pgtype.Lookup(f.Type)
		if err != nil {
			return nil, err
		}
		put32(int32(info.OID))
		col := sa.Field(i)
		v, err := Encode(pgtype.BinaryFormat, info, f.Type, col, idx)
		if err != nil {
			return nil, err
		}
		if v == nil {
			put32(-1)
			continue
		}
		b, ok := v.([]byte)
		if !ok {
			return nil, fmt.Errorf("rowencode: struct field encoder returned %T, want []byte", v)
		}
		put32(int32(len(b)))
		buf = append(buf, b...)
	}
	return buf, nil
}

func encodeStructText(st *arrow.StructType, sa *array.Struct, idx int) (string, error) {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, f := range st.Fields() {
		if i > 0 {
			sb.WriteByte(',')
		}
		info, err := pgtype.Lookup(f.Type)
		if err != nil {
			return "", err
		}
		col := sa.Field(i)
		if col.IsNull(idx) {
			continue // empty field text, matching PostgreSQL's record output for NULL
		}
		v, err := Encode(pgtype.TextFormat, info, f.Type, col, idx)
		if err != nil {
			return "", err
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("rowencode: struct field encoder returned %T, want string", v)
		}
		sb.WriteString(quoteRecordField(s))
	}
	sb.WriteByte(')')
	return sb.String(), nil
}

func quoteRecordField(s string) string {
	if s == "" || needsRecordQuote(s) {
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

func needsRecordQuote(s string) bool {
	return strings.ContainsAny(s, " ,()\"\\")
}
