package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNodeAndScanOrder(t *testing.T) {
	g := New()
	g.AddNode("b", Attributes{"text": "second"})
	g.AddNode("a", Attributes{"text": "first"})
	g.AddNode("c", nil)

	assert.Equal(t, 3, g.Count())
	assert.Equal(t, []string{"b", "a", "c"}, g.Scan())
	// Scan order is stable across calls
	assert.Equal(t, g.Scan(), g.Scan())

	v, ok := g.Attribute("a", "text")
	require.True(t, ok)
	assert.Equal(t, "first", v)

	// The id attribute is always present
	v, ok = g.Attribute("c", "id")
	require.True(t, ok)
	assert.Equal(t, "c", v)

	_, ok = g.Attribute("a", "missing")
	assert.False(t, ok)
	_, ok = g.Attribute("missing", "text")
	assert.False(t, ok)
}

func TestAddNodeMergesAttributes(t *testing.T) {
	g := New()
	g.AddNode("a", Attributes{"text": "t"})
	g.AddNode("a", Attributes{"topic": "Topic"})

	assert.Equal(t, 1, g.Count())
	text, _ := g.Attribute("a", "text")
	topic, _ := g.Attribute("a", "topic")
	assert.Equal(t, "t", text)
	assert.Equal(t, "Topic", topic)
}

func TestAddEdgeUpsert(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddEdge("a", "b", Attributes{"weight": 0.5})
	g.AddEdge("a", "b", Attributes{"weight": 0.7})

	assert.Equal(t, 1, g.EdgeCount())
	edges := g.Edges("a")
	require.Contains(t, edges, "b")
	assert.Equal(t, 0.7, edges["b"]["weight"])
}

func TestAddEdgeCreatesMissingNodes(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", nil)
	assert.Equal(t, 2, g.Count())
	assert.True(t, g.Has("a"))
	assert.True(t, g.Has("b"))
}

func TestDeleteCascadesEdges(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(id, nil)
	}
	g.AddEdge("a", "b", nil)
	g.AddEdge("b", "c", nil)
	g.AddEdge("c", "b", nil)

	g.Delete([]string{"b"})

	assert.Equal(t, 2, g.Count())
	assert.Equal(t, []string{"a", "c"}, g.Scan())
	assert.Equal(t, 0, g.EdgeCount(), "edges where b is source or target are gone")

	// Deleting unknown ids is a no-op
	g.Delete([]string{"nope"})
	assert.Equal(t, 2, g.Count())
}

func TestEdgesReturnsCopy(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", Attributes{"weight": 0.5})
	edges := g.Edges("a")
	edges["b"]["weight"] = 0.1

	fresh := g.Edges("a")
	assert.Equal(t, 0.5, fresh["b"]["weight"])
	assert.Nil(t, g.Edges("missing"))
}
