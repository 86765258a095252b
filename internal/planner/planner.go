// Package planner is the consumer-facing core: point safety queries and
// safest/fastest route planning with a cached road graph.
package planner

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/safepath/safepath/internal/geo"
	"github.com/safepath/safepath/internal/graphcache"
	"github.com/safepath/safepath/internal/roadnet"
	"github.com/safepath/safepath/internal/router"
	"github.com/safepath/safepath/internal/safety"
)

// Options tunes the planner's graph-building behavior.
type Options struct {
	// BBoxPadding pads the box derived from origin/destination, in degrees.
	BBoxPadding float64
	// ShrinkFactor scales a requested box before the network download. The
	// default 0.5 keeps first-request latency tolerable; routes near the
	// requested box's edge may fall outside the downloaded area.
	ShrinkFactor float64
	// Annotate is passed through to the edge-annotation pass.
	Annotate roadnet.AnnotateOptions
}

// DefaultOptions returns the planner defaults.
func DefaultOptions() Options {
	return Options{
		BBoxPadding:  0.02,
		ShrinkFactor: graphcache.DefaultShrinkFactor,
	}
}

// RouteSet is the result of a route request: the safest and fastest paths
// between the same snapped endpoints, with per-path stats.
type RouteSet struct {
	Origin      geo.Coord     `json:"origin"`
	Destination geo.Coord     `json:"destination"`
	Bounds      geo.BBox      `json:"bounds"`
	Safest      *router.Path  `json:"safest"`
	Fastest     *router.Path  `json:"fastest"`
	CacheHit    bool          `json:"cache_hit"`
	BuildTime   time.Duration `json:"-"`
}

// Planner wires the score field, network provider, and graph cache behind
// the two consumer-facing operations.
type Planner struct {
	field    *safety.Field
	provider roadnet.Provider
	cache    *graphcache.Cache
	opts     Options
}

// New creates a planner. The cache is injected so tests and multi-tenant
// callers control its lifetime.
func New(field *safety.Field, provider roadnet.Provider, cache *graphcache.Cache, opts Options) *Planner {
	if opts.BBoxPadding <= 0 {
		opts.BBoxPadding = 0.02
	}
	if opts.ShrinkFactor <= 0 || opts.ShrinkFactor > 1 {
		opts.ShrinkFactor = graphcache.DefaultShrinkFactor
	}
	return &Planner{field: field, provider: provider, cache: cache, opts: opts}
}

// Field exposes the underlying score field for callers that need its extent.
func (p *Planner) Field() *safety.Field { return p.field }

// Cache exposes the graph cache for persistence commands.
func (p *Planner) Cache() *graphcache.Cache { return p.cache }

// GetSafetyScore returns the normalized safety score at a coordinate.
// Fails with safety.ErrNotReady before ComputeScores and safety.ErrNoData
// on an empty table.
func (p *Planner) GetSafetyScore(lon, lat float64) (float64, error) {
	return p.field.ScoreAt(lon, lat)
}

// GetRoutes computes the safest and fastest routes between origin and
// destination. When bbox is nil the box is derived from the endpoints with
// the configured padding. The annotated graph is cached per bounding box;
// concurrent requests for an uncovered area serialize on the cache so only
// one triggers the download. A failed build returns the provider error and
// leaves any prior cached graph untouched.
func (p *Planner) GetRoutes(ctx context.Context, origin, destination geo.Coord, bbox *geo.BBox) (*RouteSet, error) {
	bounds := geo.BBoxAround(origin, destination, p.opts.BBoxPadding)
	if bbox != nil {
		bounds = *bbox
	}

	entry, hit, buildTime, err := p.graphFor(ctx, bounds, true)
	if err != nil {
		return nil, err
	}

	safest, err := router.Route(entry.Graph, origin, destination, router.MinimizeSafetyCost)
	if err != nil {
		return nil, err
	}
	fastest, err := router.Route(entry.Graph, origin, destination, router.MinimizeLength)
	if err != nil {
		return nil, err
	}

	zap.L().Info("planner: routes computed",
		zap.Bool("cache_hit", hit),
		zap.Int("safest_nodes", len(safest.NodeIDs)),
		zap.Float64("safest_length_m", safest.Length),
		zap.Int("fastest_nodes", len(fastest.NodeIDs)),
		zap.Float64("fastest_length_m", fastest.Length),
	)
	return &RouteSet{
		Origin:      origin,
		Destination: destination,
		Bounds:      entry.Bounds,
		Safest:      safest,
		Fastest:     fastest,
		CacheHit:    hit,
		BuildTime:   buildTime,
	}, nil
}

// Precache builds and caches the graph for bounds without routing. Used by
// the precache command and warm-up paths. The full requested area is fetched;
// the shrink trade-off applies only to interactive route requests.
func (p *Planner) Precache(ctx context.Context, bounds geo.BBox) (*graphcache.Entry, error) {
	entry, _, _, err := p.graphFor(ctx, bounds, false)
	return entry, err
}

// graphFor returns a cached graph covering bounds, building one on a miss.
// The whole lookup-build-replace cycle runs under the cache lock. The entry
// records the requested bounds, not the (possibly shrunk) fetched bounds, so
// a repeat of the same request is a hit; coverage near the box edge is
// already a documented casualty of the shrink trade-off.
func (p *Planner) graphFor(ctx context.Context, bounds geo.BBox, shrink bool) (*graphcache.Entry, bool, time.Duration, error) {
	p.cache.Lock()
	defer p.cache.Unlock()

	if entry, ok := p.cache.LookupLocked(bounds); ok {
		return entry, true, 0, nil
	}

	fetchBounds := bounds
	if shrink {
		fetchBounds = bounds.Shrink(p.opts.ShrinkFactor)
	}
	zap.L().Info("planner: building graph",
		zap.Float64("north", fetchBounds.North),
		zap.Float64("south", fetchBounds.South),
		zap.Float64("east", fetchBounds.East),
		zap.Float64("west", fetchBounds.West),
	)

	start := time.Now()
	g, err := p.provider.Fetch(ctx, fetchBounds)
	if err != nil {
		return nil, false, 0, eris.Wrap(err, "planner: build graph")
	}
	if _, err := roadnet.Annotate(ctx, g, p.field, p.opts.Annotate); err != nil {
		return nil, false, 0, eris.Wrap(err, "planner: annotate graph")
	}

	p.cache.ReplaceLocked(bounds, g)
	return &graphcache.Entry{Bounds: bounds, Graph: g}, false, time.Since(start), nil
}
