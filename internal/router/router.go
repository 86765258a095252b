// Package router runs shortest-path queries over an annotated road network.
package router

import (
	"container/heap"
	"math"

	"github.com/rotisserie/eris"

	"github.com/safepath/safepath/internal/geo"
	"github.com/safepath/safepath/internal/roadnet"
)

// ErrNoPath means the snapped endpoints lie in disconnected components. The
// graph itself was built fine; there is simply no way through.
var ErrNoPath = eris.New("router: no path between endpoints")

// WeightFunc selects the edge weight a query minimizes.
type WeightFunc func(e *roadnet.Edge) float64

// MinimizeSafetyCost weights edges by safety cost, producing the safest route.
func MinimizeSafetyCost(e *roadnet.Edge) float64 { return e.SafetyCost }

// MinimizeLength weights edges by physical length, producing the fastest route.
func MinimizeLength(e *roadnet.Edge) float64 { return e.Length }

// Path is a routing result: the traversed nodes in order plus summary stats
// accumulated over the traversed edges.
type Path struct {
	NodeIDs    []int64     `json:"node_ids"`
	Coords     []geo.Coord `json:"coords"`
	Length     float64     `json:"length_m"`    // meters, sum of edge lengths
	SafetyCost float64     `json:"safety_cost"` // sum of edge safety costs
	MeanSafety float64     `json:"mean_safety"` // mean edge safety score, 0 for a single-node path
}

// Route finds the minimum-weight path between the nodes nearest to origin and
// destination. Deterministic for a fixed graph and weight function: ties are
// broken by node ID. Returns ErrNoPath when the endpoints are disconnected.
func Route(g *roadnet.Graph, origin, destination geo.Coord, weight WeightFunc) (*Path, error) {
	src, err := SnapToGraph(g, origin)
	if err != nil {
		return nil, err
	}
	dst, err := SnapToGraph(g, destination)
	if err != nil {
		return nil, err
	}
	return routeBetween(g, src, dst, weight)
}

func routeBetween(g *roadnet.Graph, src, dst int64, weight WeightFunc) (*Path, error) {
	dist := map[int64]float64{src: 0}
	prevEdge := map[int64]*roadnet.Edge{}
	done := map[int64]bool{}

	pq := &nodeQueue{{id: src, priority: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*nodeItem)
		if done[cur.id] {
			continue
		}
		done[cur.id] = true
		if cur.id == dst {
			break
		}

		for _, e := range g.Edges[cur.id] {
			w := weight(e)
			if w < 0 || math.IsNaN(w) {
				continue
			}
			alt := dist[cur.id] + w
			old, seen := dist[e.To]
			if !seen || alt < old || (alt == old && prevEdge[e.To] != nil && cur.id < prevEdge[e.To].From) {
				dist[e.To] = alt
				prevEdge[e.To] = e
				heap.Push(pq, &nodeItem{id: e.To, priority: alt})
			}
		}
	}

	if !done[dst] {
		return nil, ErrNoPath
	}
	return reconstruct(g, src, dst, prevEdge)
}

func reconstruct(g *roadnet.Graph, src, dst int64, prevEdge map[int64]*roadnet.Edge) (*Path, error) {
	var edges []*roadnet.Edge
	for cur := dst; cur != src; {
		e, ok := prevEdge[cur]
		if !ok {
			return nil, ErrNoPath
		}
		edges = append(edges, e)
		cur = e.From
	}
	// Edges were collected destination-first.
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	p := &Path{NodeIDs: []int64{src}}
	var safetySum float64
	for _, e := range edges {
		p.NodeIDs = append(p.NodeIDs, e.To)
		p.Length += e.Length
		p.SafetyCost += e.SafetyCost
		safetySum += e.Safety
	}
	if len(edges) > 0 {
		p.MeanSafety = safetySum / float64(len(edges))
	}

	p.Coords = make([]geo.Coord, 0, len(p.NodeIDs))
	for _, id := range p.NodeIDs {
		c, ok := g.Coord(id)
		if !ok {
			return nil, eris.Errorf("router: node %d missing coordinates", id)
		}
		p.Coords = append(p.Coords, c)
	}
	return p, nil
}

type nodeItem struct {
	id       int64
	priority float64
}

type nodeQueue []*nodeItem

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].id < q[j].id
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) { *q = append(*q, x.(*nodeItem)) }

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
