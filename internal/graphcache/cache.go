// Package graphcache caches annotated road graphs keyed by bounding box, with
// optional gob persistence so a precached graph survives restarts.
package graphcache

import (
	"encoding/gob"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/safepath/safepath/internal/geo"
	"github.com/safepath/safepath/internal/roadnet"
)

// DefaultTolerance is the containment slack, in degrees, for reusing a cached
// graph: a request counts as covered if its box fits inside the cached box
// expanded by this much on every side.
const DefaultTolerance = 0.01

// DefaultShrinkFactor halves the requested span about its center before a
// network fetch. Smaller downloads keep Overpass latency tolerable at the
// cost of edge-of-box coverage; routes near the boundary may snap to a
// suboptimal entry node.
const DefaultShrinkFactor = 0.5

// Entry is a cached annotated graph together with the bounds it covers.
// Entries are immutable once stored; the cache swaps them wholesale.
type Entry struct {
	Bounds geo.BBox
	Graph  *roadnet.Graph
}

// Stats counts cache hit/miss traffic.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// Cache holds at most one graph entry at a time, mirroring the
// single-city working set it serves. One mutex guards the whole
// lookup-rebuild-replace cycle so concurrent readers never observe a
// half-replaced entry.
type Cache struct {
	mu        sync.Mutex
	entry     *Entry
	tolerance float64
	hits      atomic.Int64
	misses    atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithTolerance overrides the containment slack in degrees.
func WithTolerance(deg float64) Option {
	return func(c *Cache) { c.tolerance = deg }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{tolerance: DefaultTolerance}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lock acquires the cache mutex for a lookup-rebuild-replace cycle. Callers
// that miss must keep holding the lock while they rebuild, then call
// ReplaceLocked, so concurrent requests for the same area trigger one fetch.
func (c *Cache) Lock() { c.mu.Lock() }

// Unlock releases the cache mutex.
func (c *Cache) Unlock() { c.mu.Unlock() }

// LookupLocked returns the cached entry if it covers bounds within the
// tolerance. Must be called with the cache locked.
func (c *Cache) LookupLocked(bounds geo.BBox) (*Entry, bool) {
	if c.entry != nil && c.entry.Bounds.ContainsWithin(bounds, c.tolerance) {
		c.hits.Add(1)
		return c.entry, true
	}
	c.misses.Add(1)
	return nil, false
}

// ReplaceLocked swaps in a new entry. Must be called with the cache locked;
// on a failed rebuild callers simply skip the call, leaving the prior entry
// intact.
func (c *Cache) ReplaceLocked(bounds geo.BBox, g *roadnet.Graph) {
	c.entry = &Entry{Bounds: bounds, Graph: g}
}

// Lookup is LookupLocked with its own locking, for read-only callers.
func (c *Cache) Lookup(bounds geo.BBox) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.LookupLocked(bounds)
}

// Replace is ReplaceLocked with its own locking.
func (c *Cache) Replace(bounds geo.BBox, g *roadnet.Graph) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ReplaceLocked(bounds, g)
}

// Stats returns hit/miss counters.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// blob is the gob persistence format.
type blob struct {
	Bounds geo.BBox
	Graph  *roadnet.Graph
}

// SaveFile writes the current entry to path as a gob blob. Saving an empty
// cache is an error.
func (c *Cache) SaveFile(path string) error {
	c.mu.Lock()
	entry := c.entry
	c.mu.Unlock()

	if entry == nil {
		return eris.New("graphcache: nothing to save")
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "graphcache: create cache file")
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(blob{Bounds: entry.Bounds, Graph: entry.Graph}); err != nil {
		return eris.Wrap(err, "graphcache: encode cache blob")
	}
	zap.L().Info("graphcache: saved cache blob",
		zap.String("path", path),
		zap.Int("nodes", entry.Graph.NodeCount()),
		zap.Int("edges", entry.Graph.EdgeCount()),
	)
	return nil
}

// LoadFile restores the entry from a gob blob written by SaveFile. A missing
// or corrupt file is logged and ignored; the cache starts empty and the next
// request rebuilds it.
func (c *Cache) LoadFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Warn("graphcache: cache file unreadable, starting empty",
				zap.String("path", path), zap.Error(err))
		}
		return
	}
	defer f.Close()

	var b blob
	if err := gob.NewDecoder(f).Decode(&b); err != nil {
		zap.L().Warn("graphcache: cache file corrupt, starting empty",
			zap.String("path", path), zap.Error(err))
		return
	}
	if b.Graph == nil || b.Graph.NodeCount() == 0 {
		zap.L().Warn("graphcache: cache file empty, starting empty",
			zap.String("path", path))
		return
	}

	c.mu.Lock()
	c.entry = &Entry{Bounds: b.Bounds, Graph: b.Graph}
	c.mu.Unlock()
	zap.L().Info("graphcache: loaded cache blob",
		zap.String("path", path),
		zap.Int("nodes", b.Graph.NodeCount()),
		zap.Int("edges", b.Graph.EdgeCount()),
	)
}
