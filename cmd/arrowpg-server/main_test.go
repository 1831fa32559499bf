package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/arrowpg/arrowpg/engine/fileengine"
)

func TestSplitNamePath(t *testing.T) {
	name, path, err := splitNamePath("events:/data/events.csv")
	if err != nil {
		t.Fatalf("splitNamePath: %v", err)
	}
	if name != "events" || path != "/data/events.csv" {
		t.Fatalf("splitNamePath = %q, %q", name, path)
	}

	if _, _, err := splitNamePath("no-colon"); err == nil {
		t.Fatal("splitNamePath: want error for missing colon")
	}
	if _, _, err := splitNamePath(":noname"); err == nil {
		t.Fatal("splitNamePath: want error for empty name")
	}
	if _, _, err := splitNamePath("nopath:"); err == nil {
		t.Fatal("splitNamePath: want error for empty path")
	}
}

func TestLoadTablesRejectsMalformedSpec(t *testing.T) {
	err := loadTables("csv", []string{"bad-spec"}, func(name, path string) error {
		t.Fatal("load should not be called for a malformed spec")
		return nil
	})
	if err == nil {
		t.Fatal("loadTables: want error for malformed spec")
	}
}

func TestLoadTablesPropagatesLoadError(t *testing.T) {
	wantErr := errors.New("boom")
	err := loadTables("csv", []string{"t:/tmp/t.csv"}, func(name, path string) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("loadTables error = %v, want wrapping %v", err, wantErr)
	}
}

func TestLoadDirDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "events.csv")
	if err := os.WriteFile(csvPath, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	jsonPath := filepath.Join(dir, "people.json")
	if err := os.WriteFile(jsonPath, []byte(`[{"a":1}]`), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}
	// An unrecognized extension must be skipped, not errored on.
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("write txt: %v", err)
	}

	eng := fileengine.New()
	if err := loadDir(eng, dir); err != nil {
		t.Fatalf("loadDir: %v", err)
	}

	if _, ok := eng.Table("events"); !ok {
		t.Error("events table was not registered from events.csv")
	}
	if _, ok := eng.Table("people"); !ok {
		t.Error("people table was not registered from people.json")
	}
}

func TestLoadIPCOverridesSkipsUnrecognizedFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	overrides, err := loadIPCOverrides(dir)
	if err != nil {
		t.Fatalf("loadIPCOverrides: %v", err)
	}
	if len(overrides) != 0 {
		t.Fatalf("overrides = %v, want empty", overrides)
	}
}
