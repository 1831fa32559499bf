package wireserver

import (
	"github.com/apache/arrow/go/v18/arrow"

	"github.com/arrowpg/arrowpg/catalog"
	"github.com/arrowpg/arrowpg/engine"
)

// emptySource is the catalog.Source used when the configured Engine does
// not itself implement catalog.Source: pg_class/pg_attribute/pg_namespace/
// pg_database then describe an empty catalog rather than failing to build.
type emptySource struct{}

func (emptySource) Databases() []catalog.Database { return nil }

// refreshCatalog rebuilds and registers every pg_catalog surrogate table
// catalog.Provider answers for into the engine, via the optional
// engine.CatalogRegistrar capability fileengine.Engine satisfies. Engines
// that don't implement CatalogRegistrar simply never see pg_catalog
// queries answered — spec.md's pg_catalog surface is then unavailable
// against that engine, which is the same trade-off a real embedder makes
// by choosing not to wire a catalog registry in at all.
func (s *Server) refreshCatalog() {
	reg, ok := s.eng.(engine.CatalogRegistrar)
	if !ok {
		return
	}

	src := s.catalogSrc
	if src == nil {
		src = emptySource{}
	}

	for _, name := range s.catalog.TableNames() {
		rec, err := s.catalog.Table(name, src)
		if err != nil {
			s.logger.Printf("catalog: skipping pg_catalog.%s: %v", name, err)
			continue
		}
		reg.Register(name, rec.Schema(), []arrow.Record{rec})
	}
}
