package ir

import (
	"sort"

	"tensorc/internal/ops"
	"tensorc/internal/types"
)

// ResolvedNode is a RawNode with its shape and datatype fully determined:
// no wildcards, no ellipses (spec.md §3).
type ResolvedNode struct {
	ID       string
	Op       ops.Op
	Shape    types.Shape
	Datatype types.Datatype
}

// ResolvedGraph is the output of the resolver: every node carries a
// concrete shape/datatype, and Order gives the topological execution order
// nodes must run in (ties already broken by node id ascending).
type ResolvedGraph struct {
	Nodes []ResolvedNode
	Edges []RawEdge
	Order []NodeIndex
}

// IncomingSortedByDstPort mirrors RawGraph's helper for the resolved graph.
func (g *ResolvedGraph) IncomingSortedByDstPort(dst NodeIndex) []RawEdge {
	var out []RawEdge
	for _, e := range g.Edges {
		if e.Dst == dst {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DstPort < out[j].DstPort })
	return out
}
