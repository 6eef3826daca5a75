// Package ir holds the three IR graph representations that flow between
// pipeline stages: RawGraph (post-inlining, pre-resolution), ResolvedGraph
// (post shape/type inference), and LinearGraph (post-linearization, with
// workspace offsets). Nodes are arena-allocated and referenced by integer
// NodeIndex rather than by cyclic pointer, per the design note that
// recommends integer indices over owned pointer graphs; the original
// string id is retained on each node purely for diagnostics and for
// deriving the node's sanitized C identifier.
package ir

import (
	"sort"

	"tensorc/internal/ops"
)

// NodeIndex is an arena index into a graph's Nodes slice.
type NodeIndex int

// RawNode is a flattened, post-inlining node: an id and its operator.
// Incoming edges are tracked separately in RawGraph.Edges.
type RawNode struct {
	ID string
	Op ops.Op
}

// RawEdge connects one producer's output port to one consumer's input port.
type RawEdge struct {
	Src     NodeIndex
	SrcPort string
	Dst     NodeIndex
	DstPort string
}

// RawGraph is the flat output of the inliner: only primitive nodes remain,
// plus synthesized Input/Output boundary nodes.
type RawGraph struct {
	Nodes []RawNode
	Edges []RawEdge

	byID map[string]NodeIndex
}

// NewRawGraph returns an empty raw graph ready for incremental construction.
func NewRawGraph() *RawGraph {
	return &RawGraph{byID: map[string]NodeIndex{}}
}

// AddNode appends a node with the given final (already-prefixed) id and
// returns its index. Panics if id was already added, since node ids must
// be unique within a program after inlining (spec.md §3 invariants).
func (g *RawGraph) AddNode(id string, op ops.Op) NodeIndex {
	if _, exists := g.byID[id]; exists {
		panic("ir: duplicate node id after inlining: " + id)
	}
	idx := NodeIndex(len(g.Nodes))
	g.Nodes = append(g.Nodes, RawNode{ID: id, Op: op})
	g.byID[id] = idx
	return idx
}

// Lookup returns the index of the node with the given final id.
func (g *RawGraph) Lookup(id string) (NodeIndex, bool) {
	idx, ok := g.byID[id]
	return idx, ok
}

// AddEdge appends an edge to the graph.
func (g *RawGraph) AddEdge(src NodeIndex, srcPort string, dst NodeIndex, dstPort string) {
	g.Edges = append(g.Edges, RawEdge{Src: src, SrcPort: srcPort, Dst: dst, DstPort: dstPort})
}

// IncomingSortedByDstPort returns the edges terminating at dst, ordered by
// destination port name, per spec.md §3's determinism requirement that
// edges be consumed in sorted-by-destination-port order.
func (g *RawGraph) IncomingSortedByDstPort(dst NodeIndex) []RawEdge {
	var out []RawEdge
	for _, e := range g.Edges {
		if e.Dst == dst {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DstPort < out[j].DstPort })
	return out
}
