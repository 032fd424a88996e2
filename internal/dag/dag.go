// Package dag holds the curriculum dependency graph. Edges are extracted
// from free-text "feeds into" annotations and kept as explicit forward and
// reverse adjacency maps that are built once and only read afterwards.
package dag

import (
	"errors"
	"fmt"
	"sort"
)

// ErrCycle is returned when the graph contains a dependency cycle.
var ErrCycle = errors.New("cycle detected")

// Source is a node as seen by the extractor: an item ID plus the raw
// annotation text declaring what it references.
type Source struct {
	ID        int
	FeedsInto string
}

// Edge is a resolved dependency edge from an item to a referenced item.
type Edge struct {
	From        int
	To          int
	Description string
}

// Graph is an immutable dependency graph over curriculum item IDs.
// Forward edges run from an item to the targets named in its annotation;
// the reverse map runs from a target back to every item naming it.
type Graph struct {
	nodes   map[int]bool
	forward map[int][]Dependency
	reverse map[int][]int
	dropped []Edge
}

// Build extracts edges from every source annotation and inverts them into
// the reverse map. Targets that are not themselves sources, and
// self-references, are dropped and reported through Dropped.
func Build(sources []Source) *Graph {
	g := &Graph{
		nodes:   make(map[int]bool, len(sources)),
		forward: make(map[int][]Dependency, len(sources)),
		reverse: make(map[int][]int),
	}
	for _, s := range sources {
		g.nodes[s.ID] = true
	}

	for _, s := range sources {
		for _, dep := range ParseDependencies(s.FeedsInto) {
			if !g.nodes[dep.Target] || dep.Target == s.ID {
				g.dropped = append(g.dropped, Edge{From: s.ID, To: dep.Target, Description: dep.Description})
				continue
			}
			g.forward[s.ID] = append(g.forward[s.ID], dep)
			g.reverse[dep.Target] = append(g.reverse[dep.Target], s.ID)
		}
	}

	for id := range g.reverse {
		sort.Ints(g.reverse[id])
	}
	return g
}

// Has reports whether id is a node in the graph.
func (g *Graph) Has(id int) bool {
	return g.nodes[id]
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Prerequisites returns the dependencies declared by id's own annotation,
// in annotation order. The returned slice is a copy.
func (g *Graph) Prerequisites(id int) []Dependency {
	deps := g.forward[id]
	if len(deps) == 0 {
		return nil
	}
	out := make([]Dependency, len(deps))
	copy(out, deps)
	return out
}

// Dependents returns the IDs of items whose annotation names id, ascending.
func (g *Graph) Dependents(id int) []int {
	ids := g.reverse[id]
	if len(ids) == 0 {
		return nil
	}
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

// Edges returns every resolved edge ordered by source then target.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, from := range g.sortedNodes() {
		for _, dep := range g.forward[from] {
			edges = append(edges, Edge{From: from, To: dep.Target, Description: dep.Description})
		}
	}
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// Dropped returns the annotation references that did not resolve to a
// known item (or pointed at their own item).
func (g *Graph) Dropped() []Edge {
	out := make([]Edge, len(g.dropped))
	copy(out, g.dropped)
	return out
}

// HasPath reports whether there is a directed path from src to dst
// following forward edges.
func (g *Graph) HasPath(src, dst int) bool {
	if src == dst {
		return false
	}
	visited := make(map[int]bool)
	queue := []int{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range g.forward[cur] {
			if dep.Target == dst {
				return true
			}
			if !visited[dep.Target] {
				visited[dep.Target] = true
				queue = append(queue, dep.Target)
			}
		}
	}
	return false
}

// TopologicalSort returns node IDs so that every item appears after the
// items its annotation references. Ties break on ascending ID. Returns
// ErrCycle if the annotations reference each other circularly.
func (g *Graph) TopologicalSort() ([]int, error) {
	outDegree := make(map[int]int, len(g.nodes))
	for id := range g.nodes {
		outDegree[id] = len(g.forward[id])
	}

	var queue []int
	for _, id := range g.sortedNodes() {
		if outDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	sorted := make([]int, 0, len(g.nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, id)

		var freed []int
		for _, dependent := range g.reverse[id] {
			outDegree[dependent]--
			if outDegree[dependent] == 0 {
				freed = append(freed, dependent)
			}
		}
		sort.Ints(freed)
		queue = append(queue, freed...)
	}

	if len(sorted) != len(g.nodes) {
		return nil, fmt.Errorf("%w: not all items could be ordered (%d of %d)",
			ErrCycle, len(sorted), len(g.nodes))
	}
	return sorted, nil
}

// Cycles returns the IDs of items that sit on a dependency cycle,
// ascending. It is empty for an acyclic graph.
func (g *Graph) Cycles() []int {
	var ids []int
	for _, id := range g.sortedNodes() {
		if g.onCycle(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// onCycle reports whether any forward target of id can reach id again.
func (g *Graph) onCycle(id int) bool {
	for _, dep := range g.forward[id] {
		if g.HasPath(dep.Target, id) {
			return true
		}
	}
	return false
}

func (g *Graph) sortedNodes() []int {
	ids := make([]int, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
