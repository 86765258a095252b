package roadnet

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	overpass "github.com/serjvanilla/go-overpass"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/safepath/safepath/internal/geo"
	"github.com/safepath/safepath/internal/resilience"
)

// drivableHighways matches the OSM highway classes that make up the
// drivable street network.
const drivableHighways = "motorway|trunk|primary|secondary|tertiary|unclassified|residential|living_street|motorway_link|trunk_link|primary_link|secondary_link|tertiary_link"

// OverpassConfig configures the Overpass-backed network provider.
type OverpassConfig struct {
	Endpoint       string        // Overpass API URL
	Timeout        time.Duration // per-request HTTP timeout
	RequestsPerSec float64       // rate limit toward the public API
	MaxRetries     int
}

// OverpassProvider fetches road networks from the Overpass API. Calls are
// rate-limited (public Overpass instances enforce usage etiquette) and
// retried on transient failures.
type OverpassProvider struct {
	client  overpass.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewOverpassProvider creates a provider against the given Overpass endpoint.
func NewOverpassProvider(cfg OverpassConfig) *OverpassProvider {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://overpass-api.de/api/interpreter"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 0.5
	}

	retry := resilience.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxAttempts = cfg.MaxRetries
	}
	retry.OnRetry = resilience.RetryLogger("overpass", "fetch")

	return &OverpassProvider{
		client:  overpass.NewWithSettings(cfg.Endpoint, 1, &http.Client{Timeout: cfg.Timeout}),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		retry:   retry,
	}
}

// Fetch downloads the drivable ways inside bounds and assembles them into a
// directed graph. Way segments are expanded to per-segment edge pairs;
// oneway tagging is honored. Edge lengths are great-circle meters between
// segment endpoints.
func (p *OverpassProvider) Fetch(ctx context.Context, bounds geo.BBox) (*Graph, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "roadnet: rate limit wait")
	}

	query := fmt.Sprintf(
		"[out:json];way[\"highway\"~\"^(%s)$\"](%f,%f,%f,%f);(._;>;);out body;",
		drivableHighways, bounds.South, bounds.West, bounds.North, bounds.East,
	)

	start := time.Now()
	result, err := resilience.DoVal(ctx, p.retry, func(context.Context) (overpass.Result, error) {
		return p.client.Query(query)
	})
	if err != nil {
		return nil, eris.Wrapf(ErrProviderUnavailable, "overpass query: %v", err)
	}

	g := buildGraph(&result)
	zap.L().Info("roadnet: fetched network",
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return g, nil
}

func buildGraph(result *overpass.Result) *Graph {
	g := NewGraph()
	for _, way := range result.Ways {
		if way == nil || len(way.Nodes) < 2 {
			continue
		}
		forward, backward := onewayDirections(way.Tags)
		for i := 0; i < len(way.Nodes)-1; i++ {
			a, b := way.Nodes[i], way.Nodes[i+1]
			if a == nil || b == nil {
				continue
			}
			g.AddNode(a.ID, a.Lon, a.Lat)
			g.AddNode(b.ID, b.Lon, b.Lat)
			length := geo.Haversine(
				geo.Coord{Lon: a.Lon, Lat: a.Lat},
				geo.Coord{Lon: b.Lon, Lat: b.Lat},
			)
			if forward {
				g.AddEdge(a.ID, b.ID, length)
			}
			if backward {
				g.AddEdge(b.ID, a.ID, length)
			}
		}
	}
	return g
}

func onewayDirections(tags map[string]string) (forward, backward bool) {
	switch tags["oneway"] {
	case "yes", "true", "1":
		return true, false
	case "-1", "reverse":
		return false, true
	default:
		return true, true
	}
}
