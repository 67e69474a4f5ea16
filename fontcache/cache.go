package fontcache

import (
	"sync"

	"golang.org/x/text/cases"
)

// foldKey performs Unicode simple case folding, used to key the
// by_family/by_name indexes (spec.md §4.D). golang.org/x/text/cases gives
// true Unicode folding rather than the ASCII-only approximation the spec
// explicitly permits (and requires documenting as a limitation) -- fontkit
// does not need that limitation.
var folder = cases.Fold()

func foldKey(s string) string { return folder.String(s) }

// Cache owns the canonical font table and the indexes used to speed up
// matching. It is safe for concurrent use: reads take a read lock, and
// AddMemoryFonts takes a brief write lock (spec.md §5). Build inserts
// from its single serializer goroutine without locking, before the Cache
// is returned to any caller.
type Cache struct {
	mu sync.RWMutex

	records  []FontRecord
	byID     map[FontId]int
	byFamily map[string][]FontId
	byName   map[string][]FontId
	dedup    map[dedupKey]bool
}

// NewCache returns an empty, usable Cache.
func NewCache() *Cache {
	return &Cache{
		byID:     make(map[FontId]int),
		byFamily: make(map[string][]FontId),
		byName:   make(map[string][]FontId),
		dedup:    make(map[dedupKey]bool),
	}
}

// insert adds fp to the cache unless its dedup key is already present, in
// which case it is silently ignored (spec.md §4.C) and insert returns
// false. Callers must hold mu for writing, or, as Build does, be the only
// goroutine with access to a Cache that has not yet been shared.
func (c *Cache) insert(fp FontRecord) bool {
	key := recordDedupKey(fp.Origin)
	if c.dedup[key] {
		return false
	}
	c.dedup[key] = true

	fp.insertionOrder = len(c.records)
	c.records = append(c.records, fp)
	idx := len(c.records) - 1
	c.byID[fp.ID] = idx

	if fp.Metadata.Family != "" {
		k := foldKey(fp.Metadata.Family)
		c.byFamily[k] = append(c.byFamily[k], fp.ID)
	}
	if fp.Metadata.PreferredFamily != "" && fp.Metadata.PreferredFamily != fp.Metadata.Family {
		k := foldKey(fp.Metadata.PreferredFamily)
		c.byFamily[k] = append(c.byFamily[k], fp.ID)
	}
	for _, name := range [...]string{fp.Metadata.FullName, fp.Metadata.PostScriptName} {
		if name == "" {
			continue
		}
		k := foldKey(name)
		c.byName[k] = append(c.byName[k], fp.ID)
	}
	return true
}

// Get returns the record for id, and whether it was found.
func (c *Cache) Get(id FontId) (FontRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.byID[id]
	if !ok {
		return FontRecord{}, false
	}
	return c.records[idx], true
}

// IterAll returns a snapshot copy of every cached record.
func (c *Cache) IterAll() []FontRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]FontRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Len reports how many faces are currently indexed.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// LookupByFamily returns the ids of fonts whose family (or preferred
// family) case-fold-equals name, in insertion order.
func (c *Cache) LookupByFamily(name string) []FontId {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]FontId(nil), c.byFamily[foldKey(name)]...)
}

// LookupByName returns the ids of fonts whose full name or PostScript name
// case-fold-equals name, in insertion order.
func (c *Cache) LookupByName(name string) []FontId {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]FontId(nil), c.byName[foldKey(name)]...)
}

// GetPath renders the canonical path/origin string for id, or "" if id is
// unknown.
func (c *Cache) GetPath(id FontId) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.byID[id]
	if !ok {
		return ""
	}
	return c.records[idx].Origin.Render()
}

// GetMetadata returns the metadata for id, and whether it was found.
func (c *Cache) GetMetadata(id FontId) (Metadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.byID[id]
	if !ok {
		return Metadata{}, false
	}
	return c.records[idx].Metadata, true
}

// ListFonts enumerates every cached font's id, display name, and family
// (supplemented from fc_cache_list_fonts, SPEC_FULL.md §9).
func (c *Cache) ListFonts() []FontSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]FontSummary, len(c.records))
	for i, r := range c.records {
		name := r.Metadata.FullName
		if name == "" {
			name = r.Metadata.Family
		}
		out[i] = FontSummary{ID: r.ID, Name: name, Family: r.Metadata.Family}
	}
	return out
}
