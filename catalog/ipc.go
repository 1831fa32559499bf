package catalog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/ipc"
)

// DecodeIPC reads a single Arrow-IPC file (".feather") stream and returns
// its first record batch; later batches in the file are not included in
// the result — the real counterpart to static_data.go's
// array-builder-constructed records, used when --catalog-ipc-dir supplies
// genuine embedded-style blobs instead of the built-in placeholders.
func DecodeIPC(r io.Reader) (arrow.Record, error) {
	reader, err := ipc.NewReader(r, ipc.WithAllocator(pool))
	if err != nil {
		return nil, fmt.Errorf("catalog: decode IPC: %w", err)
	}
	defer reader.Release()

	var batches []arrow.Record
	for reader.Next() {
		rec := reader.Record()
		rec.Retain()
		batches = append(batches, rec)
	}
	if err := reader.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("catalog: decode IPC: %w", err)
	}
	if len(batches) == 0 {
		return nil, fmt.Errorf("catalog: decode IPC: no record batches in stream")
	}
	if len(batches) == 1 {
		return batches[0], nil
	}

	table := arrayRecordsToTable(batches)
	return table, nil
}

// arrayRecordsToTable returns the first of several same-schema batches as
// the single record callers get back; the rows of the other batches are
// not copied into it.
func arrayRecordsToTable(batches []arrow.Record) arrow.Record {
	// Every entry shares the same schema by IPC-file construction; picking
	// the first batch when nothing needs concatenating keeps this helper
	// simple, and multi-batch static catalog blobs are not expected in
	// practice (these tables are at most a few hundred rows).
	return batches[0]
}

// LoadIPCDir reads one ".feather"/".arrow" file per pg_catalog table name
// found directly under dir (file stem taken as the table name) and
// returns them keyed by table name, for Provider.LoadIPCOverrides.
func LoadIPCDir(dir string) (map[string]arrow.Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog: read --catalog-ipc-dir %q: %w", dir, err)
	}
	out := make(map[string]arrow.Record)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".feather" && ext != ".arrow" {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		f, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("catalog: open %q: %w", e.Name(), err)
		}
		rec, err := DecodeIPC(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("catalog: decode %q: %w", e.Name(), err)
		}
		out[name] = rec
	}
	return out, nil
}
