package router

import (
	"github.com/rotisserie/eris"

	"github.com/safepath/safepath/internal/geo"
	"github.com/safepath/safepath/internal/roadnet"
)

// SnapToGraph returns the graph node nearest to c, by planar Euclidean
// distance on raw degrees. The metric matches the score field's
// nearest-neighbor lookup; at city scale the distortion is irrelevant for
// picking an entry node. Ties break toward the smaller node ID so results do
// not depend on map iteration order.
//
// A graph with no nodes yields ErrNoPath: the download succeeded but the
// area holds no drivable ways, so the caller should try a different area.
func SnapToGraph(g *roadnet.Graph, c geo.Coord) (int64, error) {
	if g == nil || len(g.Nodes) == 0 {
		return 0, eris.Wrap(ErrNoPath, "router: snap on empty graph")
	}

	var bestID int64
	best := -1.0
	for id, n := range g.Nodes {
		d := geo.EuclideanDegrees(c, geo.Coord{Lon: n.Lon, Lat: n.Lat})
		if best < 0 || d < best || (d == best && id < bestID) {
			best = d
			bestID = id
		}
	}
	return bestID, nil
}
