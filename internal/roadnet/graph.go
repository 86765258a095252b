// Package roadnet models the road network: graph construction from a
// network provider and safety annotation of its edges.
package roadnet

import (
	"github.com/rotisserie/eris"

	"github.com/safepath/safepath/internal/geo"
)

// ErrProviderUnavailable is the sentinel for a failed network download. It
// is distinct from "no path": the graph could not be built at all.
var ErrProviderUnavailable = eris.New("roadnet: network provider unavailable")

// Node is a road-network vertex with its WGS84 coordinate.
type Node struct {
	ID  int64
	Lon float64
	Lat float64
}

// Edge is a directed connection between two node IDs.
//
// Length is the physical length in meters as supplied by the network
// provider and is the weight for fastest-route queries. Safety and
// SafetyCost are assigned by the annotator; SafetyCost is meters-equivalent
// and always > 0 after annotation.
type Edge struct {
	From       int64
	To         int64
	Length     float64
	Safety     float64
	SafetyCost float64
}

// Graph is an adjacency-list road network. All fields are exported so the
// graph cache can serialize whole graphs with encoding/gob.
type Graph struct {
	Nodes map[int64]*Node
	Edges map[int64][]*Edge
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[int64]*Node),
		Edges: make(map[int64][]*Edge),
	}
}

// AddNode inserts or replaces a node.
func (g *Graph) AddNode(id int64, lon, lat float64) {
	g.Nodes[id] = &Node{ID: id, Lon: lon, Lat: lat}
}

// AddEdge appends a directed edge. Parallel edges between the same node pair
// are allowed; shortest-path search simply considers each one.
func (g *Graph) AddEdge(from, to int64, length float64) {
	g.Edges[from] = append(g.Edges[from], &Edge{From: from, To: to, Length: length})
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the total number of directed edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.Edges {
		n += len(edges)
	}
	return n
}

// Coord returns the coordinate of a node and whether the node exists.
func (g *Graph) Coord(id int64) (geo.Coord, bool) {
	n, ok := g.Nodes[id]
	if !ok {
		return geo.Coord{}, false
	}
	return geo.Coord{Lon: n.Lon, Lat: n.Lat}, true
}
