package roadnet

import (
	"context"

	"github.com/safepath/safepath/internal/geo"
)

// Provider downloads a road network for a bounding box. Implementations are
// the only blocking, network-dependent call in the core; callers supply
// timeouts through ctx. Failures must wrap ErrProviderUnavailable so the
// routing layer can distinguish "could not build the graph" from "no path".
type Provider interface {
	Fetch(ctx context.Context, bounds geo.BBox) (*Graph, error)
}
