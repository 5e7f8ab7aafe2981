package graph

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// PathQuery is a parsed bounded-depth traversal: a sequence of anchor
// node identifiers, a hop range for each leg and a path limit.
type PathQuery struct {
	Anchors []string
	MinHops int
	MaxHops int
	Limit   int
}

var (
	queryRe  = regexp.MustCompile(`^MATCH P=(.+) RETURN P LIMIT (\d+)$`)
	anchorRe = regexp.MustCompile(`^\(\{id: "((?:[^"\\]|\\.)*)"\}\)`)
	hopRe    = regexp.MustCompile(`^-\[\*(\d+)\.\.(\d+)\]->`)
)

// ParsePathQuery parses a Cypher-style path query of the form
//
//	MATCH P=({id: "a"})-[*1..4]->({id: "b"}) RETURN P LIMIT 10
//
// A query with a single anchor carries no hop clause.
func ParsePathQuery(query string) (*PathQuery, error) {
	m := queryRe.FindStringSubmatch(query)
	if m == nil {
		return nil, fmt.Errorf("malformed path query: %q", query)
	}
	limit, err := strconv.Atoi(m[2])
	if err != nil || limit <= 0 {
		return nil, fmt.Errorf("invalid path limit in query: %q", query)
	}
	pattern := m[1]
	pq := &PathQuery{Limit: limit}
	for {
		am := anchorRe.FindStringSubmatch(pattern)
		if am == nil {
			return nil, fmt.Errorf("malformed anchor in path query: %q", query)
		}
		pq.Anchors = append(pq.Anchors, unescapeID(am[1]))
		pattern = pattern[len(am[0]):]
		if pattern == "" {
			break
		}
		hm := hopRe.FindStringSubmatch(pattern)
		if hm == nil {
			return nil, fmt.Errorf("malformed hop clause in path query: %q", query)
		}
		lo, _ := strconv.Atoi(hm[1])
		hi, _ := strconv.Atoi(hm[2])
		if lo <= 0 || hi < lo {
			return nil, fmt.Errorf("invalid hop range in path query: %q", query)
		}
		if pq.MinHops == 0 {
			pq.MinHops, pq.MaxHops = lo, hi
		} else if pq.MinHops != lo || pq.MaxHops != hi {
			return nil, fmt.Errorf("mixed hop ranges in path query: %q", query)
		}
		pattern = pattern[len(hm[0]):]
	}
	return pq, nil
}

func unescapeID(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		out = append(out, s[i])
	}
	return string(out)
}

// Query executes a parsed path query against the graph and materializes
// the union of the matched paths as a fresh subgraph. Paths are explored
// depth-first from the first anchor; enumeration stops once Limit paths
// have been accepted. A missing anchor yields an empty result.
func (g *Graph) Query(pq *PathQuery) *Graph {
	for _, anchor := range pq.Anchors {
		if !g.Has(anchor) {
			return New()
		}
	}
	if len(pq.Anchors) == 1 {
		return g.subgraph(pq.Anchors)
	}

	var ordered []string
	seen := make(map[string]struct{})
	accept := func(path []string) {
		for _, id := range path {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ordered = append(ordered, id)
		}
	}

	remaining := pq.Limit
	var walk func(prefix []string, leg int) bool
	walk = func(prefix []string, leg int) bool {
		if leg == len(pq.Anchors)-1 {
			accept(prefix)
			remaining--
			return remaining <= 0
		}
		from := pq.Anchors[leg]
		to := pq.Anchors[leg+1]
		for _, segment := range g.segments(from, to, pq.MinHops, pq.MaxHops, remaining) {
			// segment starts at from, which is already in prefix
			if walk(append(prefix, segment[1:]...), leg+1) {
				return true
			}
		}
		return false
	}
	walk([]string{pq.Anchors[0]}, 0)
	return g.subgraph(ordered)
}

// segments enumerates up to max simple paths from source to target whose
// length lies within the hop range.
func (g *Graph) segments(source, target string, minHops, maxHops, max int) [][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var found [][]string
	visited := map[string]struct{}{source: {}}
	path := []string{source}
	var dfs func(current string) bool
	dfs = func(current string) bool {
		hops := len(path) - 1
		if current == target && hops >= minHops {
			segment := make([]string, len(path))
			copy(segment, path)
			found = append(found, segment)
			return len(found) >= max
		}
		if hops >= maxHops {
			return false
		}
		targets := make([]string, 0, len(g.edges[current]))
		for next := range g.edges[current] {
			targets = append(targets, next)
		}
		sort.Strings(targets)
		for _, next := range targets {
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = struct{}{}
			path = append(path, next)
			done := dfs(next)
			path = path[:len(path)-1]
			delete(visited, next)
			if done {
				return true
			}
		}
		return false
	}
	dfs(source)
	return found
}
