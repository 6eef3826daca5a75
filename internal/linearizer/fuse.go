package linearizer

import (
	"tensorc/internal/ir"
	"tensorc/internal/ops"
	"tensorc/internal/types"
)

// fuseAdjacent groups consecutive elementwise nodes with identical result
// shapes, where the only consumer of the earlier node is the later one,
// into a single fusion group the emitter may render as one loop (spec.md
// §4.6). The presence or absence of this grouping never changes observable
// output, so any node not captured by a multi-node group simply gets its
// own singleton group.
func fuseAdjacent(resolved *ir.ResolvedGraph, lg *ir.LinearGraph) [][]ir.NodeIndex {
	consumerCount := make(map[ir.NodeIndex]int)
	soleConsumer := make(map[ir.NodeIndex]ir.NodeIndex)
	for _, e := range resolved.Edges {
		consumerCount[e.Src]++
		soleConsumer[e.Src] = e.Dst
	}

	var groups [][]ir.NodeIndex
	var current []ir.NodeIndex

	flush := func() {
		if len(current) > 0 {
			groups = append(groups, current)
			current = nil
		}
	}

	for i, idx := range lg.Order {
		n := lg.Nodes[idx]
		fusible := ops.IsElementwise(n.Op.Kind) && n.Op.Kind != ops.Reshape && n.Op.Kind != ops.Output

		if len(current) > 0 {
			prev := current[len(current)-1]
			sameShape := shapeEqual(lg.Nodes[prev].Shape, n.Shape)
			onlyConsumer := consumerCount[prev] == 1 && soleConsumer[prev] == idx
			if !(fusible && sameShape && onlyConsumer) {
				flush()
			}
		}

		if fusible {
			current = append(current, idx)
		} else {
			flush()
			groups = append(groups, []ir.NodeIndex{idx})
		}

		if i == len(lg.Order)-1 {
			flush()
		}
	}

	return groups
}

func shapeEqual(a, b types.Shape) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
