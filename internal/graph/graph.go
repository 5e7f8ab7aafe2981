package graph

import "sync"

// Attributes is a named attribute mapping for a node or an edge.
type Attributes map[string]any

// Graph is a mutable in-memory attribute graph: an arena of nodes keyed
// by stable identifier plus a directed adjacency structure keyed by
// source identifier. Traversal results are materialized as fresh Graph
// copies, so each request mutates only its own instance.
type Graph struct {
	mu    sync.RWMutex
	order []string
	nodes map[string]Attributes
	edges map[string]map[string]Attributes
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]Attributes),
		edges: make(map[string]map[string]Attributes),
	}
}

// AddNode inserts or updates a node. The "id" attribute is always set to
// the node identifier. Insertion order is preserved for Scan.
func (g *Graph) AddNode(id string, attrs Attributes) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addNode(id, attrs)
}

func (g *Graph) addNode(id string, attrs Attributes) {
	existing, ok := g.nodes[id]
	if !ok {
		existing = make(Attributes, len(attrs)+1)
		g.nodes[id] = existing
		g.order = append(g.order, id)
	}
	for k, v := range attrs {
		existing[k] = v
	}
	existing["id"] = id
}

// Count returns the number of nodes.
func (g *Graph) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Has reports whether a node exists.
func (g *Graph) Has(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// Scan returns node identifiers in insertion order. The order is stable
// across repeated calls as long as the graph is not mutated.
func (g *Graph) Scan() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Attribute returns a named node attribute, or false if the node or the
// attribute is absent.
func (g *Graph) Attribute(id, name string) (any, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	attrs, ok := g.nodes[id]
	if !ok {
		return nil, false
	}
	v, ok := attrs[name]
	return v, ok
}

// Edges returns a copy of the outgoing edges of a node, keyed by target.
func (g *Graph) Edges(id string) map[string]Attributes {
	g.mu.RLock()
	defer g.mu.RUnlock()
	targets, ok := g.edges[id]
	if !ok {
		return nil
	}
	out := make(map[string]Attributes, len(targets))
	for target, attrs := range targets {
		copied := make(Attributes, len(attrs))
		for k, v := range attrs {
			copied[k] = v
		}
		out[target] = copied
	}
	return out
}

// AddEdge inserts or replaces a directed edge. Nodes referenced by the
// edge are created if missing. Re-adding an existing edge overwrites its
// attributes, so migration of already-present edges is a no-op in effect.
func (g *Graph) AddEdge(source, target string, attrs Attributes) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.nodes[source]; !ok {
		g.addNode(source, nil)
	}
	if _, ok := g.nodes[target]; !ok {
		g.addNode(target, nil)
	}
	targets, ok := g.edges[source]
	if !ok {
		targets = make(map[string]Attributes)
		g.edges[source] = targets
	}
	copied := make(Attributes, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	targets[target] = copied
}

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, targets := range g.edges {
		n += len(targets)
	}
	return n
}

// Delete removes the given nodes along with every edge where a removed
// node is source or target. Unknown identifiers are ignored.
func (g *Graph) Delete(ids []string) {
	if len(ids) == 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := g.nodes[id]; ok {
			drop[id] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return
	}
	for id := range drop {
		delete(g.nodes, id)
		delete(g.edges, id)
	}
	for _, targets := range g.edges {
		for target := range targets {
			if _, ok := drop[target]; ok {
				delete(targets, target)
			}
		}
	}
	kept := g.order[:0]
	for _, id := range g.order {
		if _, ok := drop[id]; !ok {
			kept = append(kept, id)
		}
	}
	g.order = kept
}

// subgraph materializes a copy containing the given nodes, in the order
// provided, plus every edge between two included nodes.
func (g *Graph) subgraph(ids []string) *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()
	sub := New()
	included := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		attrs, ok := g.nodes[id]
		if !ok {
			continue
		}
		if _, seen := included[id]; seen {
			continue
		}
		included[id] = struct{}{}
		copied := make(Attributes, len(attrs))
		for k, v := range attrs {
			copied[k] = v
		}
		sub.addNode(id, copied)
	}
	for source := range included {
		for target, attrs := range g.edges[source] {
			if _, ok := included[target]; !ok {
				continue
			}
			copied := make(Attributes, len(attrs))
			for k, v := range attrs {
				copied[k] = v
			}
			targets, ok := sub.edges[source]
			if !ok {
				targets = make(map[string]Attributes)
				sub.edges[source] = targets
			}
			targets[target] = copied
		}
	}
	return sub
}
