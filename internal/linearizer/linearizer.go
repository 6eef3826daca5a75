// Package linearizer topologically orders a resolved IR graph, binds each
// node's input list, and assigns monotonic workspace offsets (spec.md
// §4.6).
package linearizer

import (
	"tensorc/internal/ir"
	"tensorc/internal/ops"
)

// Linearize converts a resolved graph into a linear graph ready for code
// emission. Node order is preserved from the resolver's topological order;
// every non-Input/Output node is assigned a disjoint workspace slot sized
// to its element count (Split gets Parts consecutive tiles).
func Linearize(resolved *ir.ResolvedGraph) (*ir.LinearGraph, error) {
	lg := &ir.LinearGraph{
		Order: resolved.Order,
		Slots: map[ir.NodeIndex]ir.WorkspaceSlot{},
	}
	lg.Nodes = make([]ir.LinearNode, len(resolved.Nodes))

	var offset int64
	for _, idx := range resolved.Order {
		n := resolved.Nodes[idx]
		incoming := resolved.IncomingSortedByDstPort(idx)
		inputs := make([]ir.InputSlot, len(incoming))
		for i, e := range incoming {
			inputs[i] = ir.InputSlot{
				Producer:      e.Src,
				ProducerPort:  e.SrcPort,
				ProducerShape: resolved.Nodes[e.Src].Shape,
			}
		}

		lg.Nodes[idx] = ir.LinearNode{
			ID:       n.ID,
			Op:       n.Op,
			Shape:    n.Shape,
			Datatype: n.Datatype,
			Inputs:   inputs,
		}

		if needsWorkspace(n.Op.Kind) {
			count := n.Shape.ConcreteElementCount()
			if n.Op.Kind == ops.Split {
				count *= int64(n.Op.Parts)
			}
			lg.Slots[idx] = ir.WorkspaceSlot{Node: idx, Offset: offset, ElementCount: count}
			offset += count
		}
	}
	lg.TotalWorkspaceElem = offset

	lg.Groups = fuseAdjacent(resolved, lg)

	return lg, nil
}

// needsWorkspace reports whether a node of this kind owns a workspace
// slot. Input and Output nodes read/write the program's argument buffers
// directly and never occupy scratch space.
func needsWorkspace(k ops.Kind) bool {
	return k != ops.Input && k != ops.Output
}
