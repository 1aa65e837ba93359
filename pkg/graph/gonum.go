package graph

import (
	"sort"

	gonum "gonum.org/v1/gonum/graph"
)

// FromGonum converts a gonum directed graph into a CSR. Gonum node ids are
// remapped to dense ids in increasing order; the returned slice maps each
// dense id back to the gonum id.
func FromGonum(src gonum.Directed) (*CSR, []int64) {
	var ids []int64
	nodes := src.Nodes()
	for nodes.Next() {
		ids = append(ids, nodes.Node().ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	dense := make(map[int64]int, len(ids))
	for i, id := range ids {
		dense[id] = i
	}

	b := NewBuilder(len(ids))
	for i, id := range ids {
		succ := src.From(id)
		for succ.Next() {
			// ids come from src itself, so AddArc cannot fail.
			_ = b.AddArc(i, dense[succ.Node().ID()])
		}
	}
	return b.Build(), ids
}
