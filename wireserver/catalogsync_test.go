package wireserver

import (
	"testing"

	"github.com/arrowpg/arrowpg/engine/fileengine"
)

func TestNewServerRegistersCatalogTables(t *testing.T) {
	eng := fileengine.New()
	if _, err := NewServer(eng, Config{}); err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	for _, name := range []string{"pg_class", "pg_attribute", "pg_namespace", "pg_database"} {
		if _, ok := eng.Table(name); !ok {
			t.Errorf("catalog table %q was not registered into the engine", name)
		}
	}
}

func TestNewServerWithoutCatalogRegistrarSkipsSync(t *testing.T) {
	// noopEngine implements engine.Engine but not engine.CatalogRegistrar;
	// refreshCatalog must no-op rather than panic or error.
	if _, err := NewServer(noopEngine{}, Config{}); err != nil {
		t.Fatalf("NewServer: %v", err)
	}
}
