package fileengine

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
)

// LoadJSON registers name from a file containing a JSON array of flat
// objects, e.g. `[{"a": 1, "b": "x"}, {"a": 2, "b": "y"}]`. Unlike
// LoadCSV/LoadArrowIPC/LoadParquet this has no third-party Arrow-native
// reader to ground on anywhere in the retrieved corpus (see DESIGN.md's
// standard-library justification for this file) — the schema is
// inferred from the union of keys across every object, typing each
// column from the first value seen for that key, null included (float64,
// bool; a string, a null or anything else makes a Utf8 column, filled via
// fmt.Sprint).
func (e *Engine) LoadJSON(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("fileengine: open %s: %w", path, err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("fileengine: parse json %s: %w", path, err)
	}

	cols := inferJSONColumns(rows)
	schema := arrow.NewSchema(cols, nil)

	b := array.NewRecordBuilder(e.pool, schema)
	defer b.Release()

	for _, row := range rows {
		for i, field := range cols {
			appendJSONValue(b.Field(i), field.Type, row[field.Name])
		}
	}
	rec := b.NewRecord()
	defer rec.Release()

	e.Register(name, schema, []arrow.Record{rec})
	return nil
}

func inferJSONColumns(rows []map[string]any) []arrow.Field {
	order := make([]string, 0)
	seen := make(map[string]bool)
	types := make(map[string]arrow.DataType)

	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
				types[k] = jsonValueType(row[k])
			}
		}
	}

	fields := make([]arrow.Field, len(order))
	for i, k := range order {
		fields[i] = arrow.Field{Name: k, Type: types[k], Nullable: true}
	}
	return fields
}

func jsonValueType(v any) arrow.DataType {
	switch v.(type) {
	case float64:
		return arrow.PrimitiveTypes.Float64
	case bool:
		return arrow.FixedWidthTypes.Boolean
	case nil:
		return arrow.BinaryTypes.String
	default:
		return arrow.BinaryTypes.String
	}
}

func appendJSONValue(fb array.Builder, dt arrow.DataType, v any) {
	if v == nil {
		fb.AppendNull()
		return
	}
	switch b := fb.(type) {
	case *array.Float64Builder:
		if f, ok := v.(float64); ok {
			b.Append(f)
			return
		}
		b.AppendNull()
	case *array.BooleanBuilder:
		if bv, ok := v.(bool); ok {
			b.Append(bv)
			return
		}
		b.AppendNull()
	case *array.StringBuilder:
		b.Append(fmt.Sprint(v))
	default:
		fb.AppendNull()
	}
}
