// Package catalog provides a pg_catalog surrogate: a fixed set of
// mostly-static system tables plus a handful (pg_class, pg_namespace,
// pg_database, pg_attribute) that are regenerated from the engine's live
// schema on every scan, backed by a monotonically increasing OID cache.
package catalog

import "sync"

// oidFloor is the first OID handed out for any catalog/schema/table
// object the cache assigns, mirroring PostgreSQL's own reserved range for
// user objects (OIDs below this are reserved for system objects).
const oidFloor = 16384

// OidKey identifies the object an OID was assigned to, so the same
// catalog/schema/table keeps the same OID across scans as long as it
// keeps existing.
type OidKey struct {
	Catalog string
	Schema  string
	Table   string
}

func catalogKey(catalog string) OidKey { return OidKey{Catalog: catalog} }
func schemaKey(catalog, schema string) OidKey { return OidKey{Catalog: catalog, Schema: schema} }
func tableKey(catalog, schema, table string) OidKey {
	return OidKey{Catalog: catalog, Schema: schema, Table: table}
}

// OIDCache assigns and remembers OIDs for catalog/schema/table objects.
// Every full scan of pg_class/pg_namespace/pg_database builds a fresh
// generation and swaps it in atomically, so objects dropped between scans
// stop being served but objects that persist keep the OID clients may
// have cached.
type OIDCache struct {
	mu      sync.RWMutex
	current map[OidKey]uint32
	next    uint32
}

// NewOIDCache returns an empty cache that hands out OIDs starting at the
// PostgreSQL user-object floor.
func NewOIDCache() *OIDCache {
	return &OIDCache{current: make(map[OidKey]uint32), next: oidFloor}
}

// Generation accumulates OID assignments for one scan; call Get for every
// object encountered (reusing a previous OID when one exists), then
// Commit to swap the accumulated keys in as the cache's new contents.
type Generation struct {
	cache *OIDCache
	keys  map[OidKey]uint32
}

// Begin starts a new generation. Reads against the cache during the scan
// still see the previous generation until Commit.
func (c *OIDCache) Begin() *Generation {
	return &Generation{cache: c, keys: make(map[OidKey]uint32)}
}

// Get returns key's OID, assigning the next free one on first sight
// within this generation (reusing the prior generation's OID if key
// already had one, so clients see stable OIDs across scans).
func (g *Generation) Get(key OidKey) uint32 {
	if oid, ok := g.keys[key]; ok {
		return oid
	}
	g.cache.mu.RLock()
	oid, existed := g.cache.current[key]
	g.cache.mu.RUnlock()
	if !existed {
		g.cache.mu.Lock()
		oid = g.cache.next
		g.cache.next++
		g.cache.mu.Unlock()
	}
	g.keys[key] = oid
	return oid
}

// Commit replaces the cache's contents with this generation's keys,
// dropping OIDs for objects that no longer appeared in the scan.
func (g *Generation) Commit() {
	g.cache.mu.Lock()
	g.cache.current = g.keys
	g.cache.mu.Unlock()
}
