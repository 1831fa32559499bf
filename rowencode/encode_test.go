package rowencode

import (
	"encoding/binary"
	"testing"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/arrowpg/arrowpg/pgtype"
)

func mustEncode(t *testing.T, format pgtype.FormatCode, dt arrow.DataType, arr arrow.Array, idx int) any {
	t.Helper()
	info, err := pgtype.Lookup(dt)
	if err != nil {
		t.Fatalf("pgtype.Lookup: %v", err)
	}
	v, err := Encode(format, info, dt, arr, idx)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return v
}

func TestEncodeInt32(t *testing.T) {
	pool := memory.NewGoAllocator()
	b := array.NewInt32Builder(pool)
	b.AppendValues([]int32{7, -3}, nil)
	b.AppendNull()
	arr := b.NewInt32Array()
	defer arr.Release()

	if got := mustEncode(t, pgtype.TextFormat, arrow.PrimitiveTypes.Int32, arr, 0); got != "7" {
		t.Errorf("text int32 = %v, want \"7\"", got)
	}
	bin := mustEncode(t, pgtype.BinaryFormat, arrow.PrimitiveTypes.Int32, arr, 1).([]byte)
	if got := int32(binary.BigEndian.Uint32(bin)); got != -3 {
		t.Errorf("binary int32 = %d, want -3", got)
	}
	if got := mustEncode(t, pgtype.TextFormat, arrow.PrimitiveTypes.Int32, arr, 2); got != nil {
		t.Errorf("null int32 = %v, want nil", got)
	}
}

func TestEncodeBool(t *testing.T) {
	pool := memory.NewGoAllocator()
	b := array.NewBooleanBuilder(pool)
	b.AppendValues([]bool{true, false}, nil)
	arr := b.NewBooleanArray()
	defer arr.Release()

	if got := mustEncode(t, pgtype.TextFormat, arrow.FixedWidthTypes.Boolean, arr, 0); got != "t" {
		t.Errorf("text bool true = %v, want \"t\"", got)
	}
	if got := mustEncode(t, pgtype.TextFormat, arrow.FixedWidthTypes.Boolean, arr, 1); got != "f" {
		t.Errorf("text bool false = %v, want \"f\"", got)
	}
	bin := mustEncode(t, pgtype.BinaryFormat, arrow.FixedWidthTypes.Boolean, arr, 0).([]byte)
	if len(bin) != 1 || bin[0] != 1 {
		t.Errorf("binary bool true = %v, want [1]", bin)
	}
}

func TestEncodeString(t *testing.T) {
	pool := memory.NewGoAllocator()
	b := array.NewStringBuilder(pool)
	b.Append("hello")
	arr := b.NewStringArray()
	defer arr.Release()

	if got := mustEncode(t, pgtype.TextFormat, arrow.BinaryTypes.String, arr, 0); got != "hello" {
		t.Errorf("text string = %v, want \"hello\"", got)
	}
}

func TestEncodeBytea(t *testing.T) {
	pool := memory.NewGoAllocator()
	b := array.NewBinaryBuilder(pool, arrow.BinaryTypes.Binary)
	b.Append([]byte{0xDE, 0xAD})
	arr := b.NewBinaryArray()
	defer arr.Release()

	got := mustEncode(t, pgtype.TextFormat, arrow.BinaryTypes.Binary, arr, 0)
	if got != `\xdead` {
		t.Errorf("text bytea = %v, want \\xdead", got)
	}
}

func TestEncodeDate32(t *testing.T) {
	pool := memory.NewGoAllocator()
	b := array.NewDate32Builder(pool)
	b.Append(arrow.Date32(19723)) // 2024-01-01 in unix days
	arr := b.NewDate32Array()
	defer arr.Release()

	got := mustEncode(t, pgtype.TextFormat, arrow.FixedWidthTypes.Date32, arr, 0)
	if got != "2024-01-01" {
		t.Errorf("text date32 = %v, want 2024-01-01", got)
	}
}

func TestEncodeList(t *testing.T) {
	pool := memory.NewGoAllocator()
	lb := array.NewListBuilder(pool, arrow.PrimitiveTypes.Int32)
	vb := lb.ValueBuilder().(*array.Int32Builder)

	lb.Append(true)
	vb.AppendValues([]int32{1, 2, 3}, nil)
	lb.Append(true)
	vb.Append(4)

	arr := lb.NewListArray()
	defer arr.Release()

	got := mustEncode(t, pgtype.TextFormat, arr.DataType(), arr, 0)
	if got != "{1,2,3}" {
		t.Errorf("text list[0] = %v, want {1,2,3}", got)
	}
	got1 := mustEncode(t, pgtype.TextFormat, arr.DataType(), arr, 1)
	if got1 != "{4}" {
		t.Errorf("text list[1] = %v, want {4}", got1)
	}
}

func TestEncodeStruct(t *testing.T) {
	pool := memory.NewGoAllocator()
	dt := arrow.StructOf(
		arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Int32},
		arrow.Field{Name: "b", Type: arrow.BinaryTypes.String},
	)
	sb := array.NewStructBuilder(pool, dt)
	ab := sb.FieldBuilder(0).(*array.Int32Builder)
	bb := sb.FieldBuilder(1).(*array.StringBuilder)

	sb.Append(true)
	ab.Append(9)
	bb.Append("x")

	arr := sb.NewStructArray()
	defer arr.Release()

	got := mustEncode(t, pgtype.TextFormat, dt, arr, 0)
	if got != "(9,x)" {
		t.Errorf("text struct = %v, want (9,x)", got)
	}
}
