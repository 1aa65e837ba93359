// Package graph provides the read-only directed graph the estimators walk.
//
// Node ids are dense: a graph with n nodes uses ids 0..n-1, so enumerating
// the nodes is iterating that range.
package graph

import (
	"fmt"
	"sort"
)

// Graph is the access contract used by the estimators. Implementations must
// be safe for concurrent readers.
type Graph interface {
	NumNodes() int
	NumArcs() int64
	OutDegree(node int) int
	// Successors returns the out-neighbours of node. Callers must not modify
	// the returned slice.
	Successors(node int) []int32
}

// CSR is an immutable compressed-sparse-row graph. Successor lists are
// sorted and contain no duplicates.
type CSR struct {
	offsets []int64
	targets []int32
}

func (g *CSR) NumNodes() int  { return len(g.offsets) - 1 }
func (g *CSR) NumArcs() int64 { return int64(len(g.targets)) }

func (g *CSR) OutDegree(node int) int {
	return int(g.offsets[node+1] - g.offsets[node])
}

func (g *CSR) Successors(node int) []int32 {
	return g.targets[g.offsets[node]:g.offsets[node+1]]
}

// InDegrees counts incoming arcs for every node.
func InDegrees(g Graph) []int {
	in := make([]int, g.NumNodes())
	for v := 0; v < g.NumNodes(); v++ {
		for _, u := range g.Successors(v) {
			in[u]++
		}
	}
	return in
}

// Validate checks the internal structure of the graph.
func (g *CSR) Validate() error {
	n := g.NumNodes()
	if n < 0 {
		return fmt.Errorf("graph has no offset table")
	}
	if g.offsets[0] != 0 || g.offsets[n] != int64(len(g.targets)) {
		return fmt.Errorf("offset table does not cover %d arcs", len(g.targets))
	}
	for v := 0; v < n; v++ {
		if g.offsets[v] > g.offsets[v+1] {
			return fmt.Errorf("node %d has negative degree", v)
		}
		succ := g.Successors(v)
		for i, u := range succ {
			if u < 0 || int(u) >= n {
				return fmt.Errorf("node %d has out-of-range successor %d", v, u)
			}
			if i > 0 && succ[i-1] >= u {
				return fmt.Errorf("successors of node %d are not strictly increasing", v)
			}
		}
	}
	return nil
}

// Builder accumulates arcs for a CSR graph with a fixed node count.
type Builder struct {
	numNodes int
	adj      [][]int32
	arcs     int
}

// NewBuilder creates a builder for a graph with numNodes nodes.
func NewBuilder(numNodes int) *Builder {
	return &Builder{
		numNodes: numNodes,
		adj:      make([][]int32, numNodes),
	}
}

// AddArc adds the directed arc from -> to.
func (b *Builder) AddArc(from, to int) error {
	if from < 0 || from >= b.numNodes {
		return fmt.Errorf("invalid source node: %d", from)
	}
	if to < 0 || to >= b.numNodes {
		return fmt.Errorf("invalid target node: %d", to)
	}
	b.adj[from] = append(b.adj[from], int32(to))
	b.arcs++
	return nil
}

// Build sorts and de-duplicates every successor list and freezes the graph.
func (b *Builder) Build() *CSR {
	offsets := make([]int64, b.numNodes+1)
	targets := make([]int32, 0, b.arcs)
	for v, succ := range b.adj {
		sort.Slice(succ, func(i, j int) bool { return succ[i] < succ[j] })
		for i, u := range succ {
			if i > 0 && succ[i-1] == u {
				continue
			}
			targets = append(targets, u)
		}
		offsets[v+1] = int64(len(targets))
		b.adj[v] = nil
	}
	return &CSR{offsets: offsets, targets: targets}
}

// Transpose returns the graph with every arc reversed.
func Transpose(g Graph) *CSR {
	n := g.NumNodes()
	offsets := make([]int64, n+1)
	for v := 0; v < n; v++ {
		for _, u := range g.Successors(v) {
			offsets[u+1]++
		}
	}
	for v := 0; v < n; v++ {
		offsets[v+1] += offsets[v]
	}

	targets := make([]int32, offsets[n])
	next := make([]int64, n)
	copy(next, offsets[:n])
	// Sources are visited in increasing order, so each reversed list comes out sorted.
	for v := 0; v < n; v++ {
		for _, u := range g.Successors(v) {
			targets[next[u]] = int32(v)
			next[u]++
		}
	}
	return &CSR{offsets: offsets, targets: targets}
}

// RemoveIsolated drops every node without incoming and outgoing arcs. It
// returns the compacted graph and, for each new id, the original id.
func RemoveIsolated(g Graph) (*CSR, []int) {
	n := g.NumNodes()
	in := InDegrees(g)

	newID := make([]int32, n)
	var oldIDs []int
	for v := 0; v < n; v++ {
		if in[v] == 0 && g.OutDegree(v) == 0 {
			newID[v] = -1
			continue
		}
		newID[v] = int32(len(oldIDs))
		oldIDs = append(oldIDs, v)
	}

	offsets := make([]int64, len(oldIDs)+1)
	targets := make([]int32, 0, g.NumArcs())
	for i, v := range oldIDs {
		for _, u := range g.Successors(v) {
			targets = append(targets, newID[u])
		}
		offsets[i+1] = int64(len(targets))
	}
	return &CSR{offsets: offsets, targets: targets}, oldIDs
}
