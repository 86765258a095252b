// Package store persists route-request history so past requests can be
// inspected and replayed.
package store

import (
	"context"
	"time"
)

// RouteStatus is the recorded outcome of a route request.
type RouteStatus string

const (
	RouteStatusOK                  RouteStatus = "ok"
	RouteStatusNoPath              RouteStatus = "no_path"
	RouteStatusProviderUnavailable RouteStatus = "provider_unavailable"
	RouteStatusError               RouteStatus = "error"
)

// RouteRecord is one recorded route request with its outcome and path stats.
type RouteRecord struct {
	ID          string      `json:"id"`
	OriginLon   float64     `json:"origin_lon"`
	OriginLat   float64     `json:"origin_lat"`
	DestLon     float64     `json:"dest_lon"`
	DestLat     float64     `json:"dest_lat"`
	Status      RouteStatus `json:"status"`
	CacheHit    bool        `json:"cache_hit"`
	SafestLen   float64     `json:"safest_length_m"`
	SafestScore float64     `json:"safest_mean_safety"`
	FastestLen  float64     `json:"fastest_length_m"`
	Insight     string      `json:"insight,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// RouteFilter specifies criteria for listing route records.
type RouteFilter struct {
	Status RouteStatus `json:"status,omitempty"`
	Limit  int         `json:"limit,omitempty"`
	Offset int         `json:"offset,omitempty"`
}

// Store defines the route-history persistence interface.
type Store interface {
	CreateRoute(ctx context.Context, rec RouteRecord) (*RouteRecord, error)
	GetRoute(ctx context.Context, id string) (*RouteRecord, error)
	ListRoutes(ctx context.Context, filter RouteFilter) ([]RouteRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}
