package catalog

import (
	"testing"

	"github.com/apache/arrow/go/v18/arrow"
)

type fakeSource struct {
	databases []Database
}

func (f fakeSource) Databases() []Database { return f.databases }

func testSource() fakeSource {
	tableSchema := arrow.NewSchema([]arrow.Field{
		{Name: "a", Type: arrow.PrimitiveTypes.Int32, Nullable: false},
		{Name: "b", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
	return fakeSource{databases: []Database{
		{Name: "postgres", Namespaces: []Namespace{
			{Name: "public", Tables: []Table{
				{Name: "t", Kind: RelTable, Schema: tableSchema},
			}},
		}},
	}}
}

func TestPgClassRowCounts(t *testing.T) {
	src := testSource()
	gen := NewOIDCache().Begin()
	rec := PgClass(src, gen)
	gen.Commit()
	defer rec.Release()

	if rec.NumRows() != 1 {
		t.Fatalf("got %d rows, want 1", rec.NumRows())
	}
}

func TestPgAttributeOneRowPerColumn(t *testing.T) {
	src := testSource()
	gen := NewOIDCache().Begin()
	rec := PgAttribute(src, gen)
	gen.Commit()
	defer rec.Release()

	if rec.NumRows() != 2 {
		t.Fatalf("got %d rows, want 2 (one per column of table t)", rec.NumRows())
	}
}

func TestPgDatabaseSynthesizesPostgresRow(t *testing.T) {
	src := fakeSource{databases: []Database{{Name: "analytics"}}}
	gen := NewOIDCache().Begin()
	rec := PgDatabase(src, gen)
	gen.Commit()
	defer rec.Release()

	if rec.NumRows() != 2 {
		t.Fatalf("got %d rows, want 2 (analytics + synthesized postgres)", rec.NumRows())
	}
}

func TestProviderServesStaticAndDynamicTables(t *testing.T) {
	p := NewProvider()
	src := testSource()

	if _, err := p.Table("pg_class", src); err != nil {
		t.Errorf("pg_class: %v", err)
	}
	if _, err := p.Table("pg_type", src); err != nil {
		t.Errorf("pg_type: %v", err)
	}
	if _, err := p.Table("does_not_exist", src); err == nil {
		t.Errorf("expected error for unknown table")
	}
}

func TestProviderTableNamesIncludesCore(t *testing.T) {
	p := NewProvider()
	names := p.TableNames()
	want := []string{"pg_class", "pg_namespace", "pg_database", "pg_attribute", "pg_type", "pg_proc", "pg_views", "pg_matviews"}
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, w := range want {
		if !have[w] {
			t.Errorf("TableNames() missing %q", w)
		}
	}
	if len(names) < 50 {
		t.Errorf("got %d table names, want at least 50", len(names))
	}
}
