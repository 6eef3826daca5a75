package ir

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"tensorc/internal/ops"
	"tensorc/internal/types"
)

// InputSlot is one ordered entry in a LinearNode's input list: which
// producer node/port feeds this slot, and that producer's resolved shape
// (needed by the emitter to compute broadcast strides).
type InputSlot struct {
	Producer      NodeIndex
	ProducerPort  string
	ProducerShape types.Shape
}

// WorkspaceSlot describes one node's scratch buffer allocation within its
// owning program's flat workspace. For Split, ElementCount covers all
// Parts tiles back-to-back.
type WorkspaceSlot struct {
	Node         NodeIndex
	Offset       int64
	ElementCount int64
}

// LinearNode is a ResolvedNode plus its ordered input bindings; workspace
// placement is tracked separately in LinearGraph.Slots, keyed by node
// index, since Input/Output nodes never receive a slot.
type LinearNode struct {
	ID       string
	Op       ops.Op
	Shape    types.Shape
	Datatype types.Datatype
	Inputs   []InputSlot
}

// LinearGraph is the linearizer's output: nodes in execution order, their
// workspace slots, and optional fusion groups.
type LinearGraph struct {
	Nodes              []LinearNode
	Order              []NodeIndex
	Slots              map[NodeIndex]WorkspaceSlot
	TotalWorkspaceElem int64
	// Groups partitions Order into runs that may be emitted as a single
	// fused loop; absence or presence of this grouping must not change
	// observable output (spec.md §4.6).
	Groups [][]NodeIndex
}

// Canonical renders a deterministic textual encoding of lg, suitable as a
// cache key input. It walks fields explicitly via each type's own String()
// method (Shape, Dimension) rather than going through fmt's generic struct
// reflection: Dimension's arithmetic nodes carry *Dimension pointers
// (internal/types/dimension.go), and letting those reach fmt's default
// pointer formatting anywhere in the tree risks a non-content-derived
// address leaking into the key. Explicit field-by-field rendering sidesteps
// that question entirely.
func (lg *LinearGraph) Canonical() string {
	var b strings.Builder

	for _, idx := range lg.Order {
		n := lg.Nodes[idx]
		fmt.Fprintf(&b, "node %d: id=%s kind=%s shape=%s dtype=%s\n", idx, n.ID, n.Op.Kind, n.Shape.String(), n.Datatype)
		b.WriteString(canonicalOp(n.Op))
		for i, in := range n.Inputs {
			fmt.Fprintf(&b, "  in[%d]: producer=%d port=%s shape=%s\n", i, in.Producer, in.ProducerPort, in.ProducerShape.String())
		}
	}

	slotKeys := make([]NodeIndex, 0, len(lg.Slots))
	for k := range lg.Slots {
		slotKeys = append(slotKeys, k)
	}
	sort.Slice(slotKeys, func(i, j int) bool { return slotKeys[i] < slotKeys[j] })
	for _, k := range slotKeys {
		s := lg.Slots[k]
		fmt.Fprintf(&b, "slot %d: node=%d offset=%d count=%d\n", k, s.Node, s.Offset, s.ElementCount)
	}

	fmt.Fprintf(&b, "total_workspace=%d\n", lg.TotalWorkspaceElem)

	for i, group := range lg.Groups {
		parts := make([]string, len(group))
		for j, idx := range group {
			parts[j] = strconv.Itoa(int(idx))
		}
		fmt.Fprintf(&b, "group %d: [%s]\n", i, strings.Join(parts, ","))
	}

	return b.String()
}

func canonicalOp(op ops.Op) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  op: name=%s axis=%d parts=%d\n", op.Name, op.Axis, op.Parts)
	if len(op.Values) > 0 {
		parts := make([]string, len(op.Values))
		for i, v := range op.Values {
			parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
		}
		fmt.Fprintf(&b, "  values=[%s]\n", strings.Join(parts, ","))
	}
	if len(op.NewShape) > 0 {
		fmt.Fprintf(&b, "  new_shape=%s\n", op.NewShape.String())
	}
	if len(op.Permutation) > 0 {
		parts := make([]string, len(op.Permutation))
		for i, p := range op.Permutation {
			parts[i] = strconv.Itoa(p)
		}
		fmt.Fprintf(&b, "  permutation=[%s]\n", strings.Join(parts, ","))
	}
	return b.String()
}
