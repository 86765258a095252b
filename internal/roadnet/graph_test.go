package roadnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddAndCount(t *testing.T) {
	g := NewGraph()
	g.AddNode(1, 77.20, 28.54)
	g.AddNode(2, 77.21, 28.54)
	g.AddNode(2, 77.22, 28.55) // replace

	g.AddEdge(1, 2, 100)
	g.AddEdge(2, 1, 100)
	g.AddEdge(1, 2, 120) // parallel edge

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())

	c, ok := g.Coord(2)
	require.True(t, ok)
	assert.Equal(t, 77.22, c.Lon)
	assert.Equal(t, 28.55, c.Lat)

	_, ok = g.Coord(99)
	assert.False(t, ok)
}

func TestOnewayDirections(t *testing.T) {
	cases := []struct {
		tags     map[string]string
		forward  bool
		backward bool
	}{
		{map[string]string{}, true, true},
		{map[string]string{"oneway": "no"}, true, true},
		{map[string]string{"oneway": "yes"}, true, false},
		{map[string]string{"oneway": "true"}, true, false},
		{map[string]string{"oneway": "1"}, true, false},
		{map[string]string{"oneway": "-1"}, false, true},
		{map[string]string{"oneway": "reverse"}, false, true},
	}
	for _, tc := range cases {
		fwd, bwd := onewayDirections(tc.tags)
		assert.Equal(t, tc.forward, fwd, "tags %v", tc.tags)
		assert.Equal(t, tc.backward, bwd, "tags %v", tc.tags)
	}
}
