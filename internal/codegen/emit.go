package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"tensorc/internal/ir"
	"tensorc/internal/ops"
	"tensorc/internal/types"
)

// emitter holds the per-program state threaded through the per-kind
// emit* helpers: the linear graph being translated and the node-to-slot-
// index table the runtime emitter's workspace array is keyed by.
type emitter struct {
	prog      string
	lg        *ir.LinearGraph
	slotIndex map[ir.NodeIndex]int
}

// EmitProgram renders a program's header and source from its linear graph.
func EmitProgram(progID string, lg *ir.LinearGraph) (header string, source string, err error) {
	e := &emitter{prog: progID, lg: lg, slotIndex: assignSlotIndices(lg)}
	header = EmitHeader(progID, lg)
	source, err = e.emitSource()
	return header, source, err
}

// assignSlotIndices gives every node holding a WorkspaceSlot a dense index
// in execution order; the runtime emitter hands <prog>_func a workspace
// array of exactly this many pointers, each to that node's own separately
// allocated scratch buffer (spec.md §4.9).
func assignSlotIndices(lg *ir.LinearGraph) map[ir.NodeIndex]int {
	idx := map[ir.NodeIndex]int{}
	next := 0
	for _, n := range lg.Order {
		if _, ok := lg.Slots[n]; ok {
			idx[n] = next
			next++
		}
	}
	return idx
}

func (e *emitter) emitSource() (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "#include \"%s.h\"\n", SanitizeID(e.prog))
	b.WriteString("#include <math.h>\n#include <omp.h>\n\n")

	b.WriteString(e.emitConstants())

	fmt.Fprintf(&b, "%s {\n", signature(e.prog, e.lg))
	b.WriteString(e.emitWorkspaceCasts())

	for _, group := range e.lg.Groups {
		stmt, err := e.emitGroup(group)
		if err != nil {
			return "", err
		}
		b.WriteString(stmt)
	}

	b.WriteString("}\n")
	return b.String(), nil
}

// emitConstants renders one static const array per Constant node, embedding
// its literal values directly in the translation unit. Constant nodes still
// receive a workspace slot from the linearizer (keeping slot accounting
// uniform across node kinds), but codegen never reads through it: the data
// lives in the binary, not in runtime-allocated scratch.
func (e *emitter) emitConstants() string {
	var b strings.Builder
	for _, idx := range e.lg.Order {
		n := e.lg.Nodes[idx]
		if n.Op.Kind != ops.Constant {
			continue
		}
		parts := make([]string, len(n.Op.Values))
		for i, v := range n.Op.Values {
			parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 32) + "f"
		}
		fmt.Fprintf(&b, "static const %s const_%s[%d] = {%s};\n", n.Datatype.CType(), SanitizeID(n.ID), len(n.Op.Values), strings.Join(parts, ", "))
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

func (e *emitter) emitWorkspaceCasts() string {
	var b strings.Builder
	for _, idx := range e.lg.Order {
		n := e.lg.Nodes[idx]
		if n.Op.Kind == ops.Input || n.Op.Kind == ops.Output || n.Op.Kind == ops.Constant {
			continue
		}
		slot := e.slotIndex[idx]
		fmt.Fprintf(&b, "    %s* buf_%s = (%s*)workspace[%d];\n", n.Datatype.CType(), SanitizeID(n.ID), n.Datatype.CType(), slot)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

func (e *emitter) emitGroup(group []ir.NodeIndex) (string, error) {
	first := e.lg.Nodes[group[0]]
	switch first.Op.Kind {
	case ops.Input, ops.Constant:
		return "", nil
	case ops.ReduceSum:
		return e.emitReduceSum(group[0]), nil
	case ops.MatMul:
		return e.emitMatMul(group[0]), nil
	case ops.Transpose:
		return e.emitTranspose(group[0]), nil
	case ops.Split:
		return e.emitSplit(group[0]), nil
	default:
		if !ops.IsElementwise(first.Op.Kind) {
			return "", fmt.Errorf("codegen: node %q has unsupported op kind %q", first.ID, first.Op.Kind)
		}
		return e.emitElementwiseGroup(group), nil
	}
}

// emitElementwiseGroup renders one shared loop over a fusion group's common
// element count, each node's kernel statement in sequence, per spec.md
// §4.6/§4.8. A singleton group (most Reshape/Output nodes, or any
// unary/binary op whose fusion chain broke) takes the same path with
// len(group) == 1.
func (e *emitter) emitElementwiseGroup(group []ir.NodeIndex) string {
	first := e.lg.Nodes[group[0]]
	n := first.Shape.ConcreteElementCount()

	var b strings.Builder
	b.WriteString("#pragma omp parallel for simd\n")
	fmt.Fprintf(&b, "for (int64_t i = 0; i < %d; i++) {\n", n)
	for _, idx := range group {
		node := e.lg.Nodes[idx]
		access := make([]string, len(node.Inputs))
		for i, slot := range node.Inputs {
			if node.Op.Kind == ops.Reshape {
				// Reshape is a row-major identity flatten (spec.md §8
				// scenario 2): producer and consumer share the same flat
				// index, never a per-dimension broadcast stride.
				access[i] = e.producerAccessRaw(slot, "i")
			} else {
				access[i] = e.producerAccessBroadcast(slot, node.Shape, "i")
			}
		}
		target := fmt.Sprintf(e.targetExpr(idx), "i")
		fmt.Fprintf(&b, "    %s\n", node.Op.EmitKernel(target, access))
	}
	b.WriteString("}\n")
	return b.String()
}

// targetExpr returns a one-hole ("%s") template for node's assignment
// target; the hole is filled with the caller's flat (or tile-offset) index
// expression.
func (e *emitter) targetExpr(idx ir.NodeIndex) string {
	n := e.lg.Nodes[idx]
	if n.Op.Kind == ops.Output {
		return fmt.Sprintf("out_%s[%%s]", n.Op.Name)
	}
	return fmt.Sprintf("buf_%s[%%s]", SanitizeID(n.ID))
}

// producerTemplate returns a one-hole template for reading one input slot's
// value: the function argument buffer for Input, the static array for
// Constant, or the producer's workspace buffer, offset into the correct
// tile when the producer is a Split port.
func (e *emitter) producerTemplate(slot ir.InputSlot) string {
	prod := e.lg.Nodes[slot.Producer]
	switch prod.Op.Kind {
	case ops.Input:
		return fmt.Sprintf("in_%s[%%s]", prod.Op.Name)
	case ops.Constant:
		return fmt.Sprintf("const_%s[%%s]", SanitizeID(prod.ID))
	default:
		base := fmt.Sprintf("buf_%s", SanitizeID(prod.ID))
		if partIdx, ok := partIndexFromPort(slot.ProducerPort); ok {
			tileElemCount := slot.ProducerShape.ConcreteElementCount()
			return fmt.Sprintf("%s[%d + (%%s)]", base, int64(partIdx)*tileElemCount)
		}
		return fmt.Sprintf("%s[%%s]", base)
	}
}

// producerAccessRaw fills the producer template with an already-computed
// flat index expression (no further broadcast decomposition needed: used by
// ReduceSum/MatMul/Transpose/Split, whose sole input maps index-for-index).
func (e *emitter) producerAccessRaw(slot ir.InputSlot, idxExpr string) string {
	return fmt.Sprintf(e.producerTemplate(slot), idxExpr)
}

// producerAccessBroadcast fills the producer template with a broadcast-
// aware index derived from consumerIdx over consumerShape (spec.md §4.8
// rule 4), used by elementwise unary/binary kernels.
func (e *emitter) producerAccessBroadcast(slot ir.InputSlot, consumerShape types.Shape, consumerIdx string) string {
	idxExpr := broadcastIndexExpr(slot.ProducerShape, consumerShape, consumerIdx)
	return fmt.Sprintf(e.producerTemplate(slot), idxExpr)
}

func partIndexFromPort(port string) (int, bool) {
	if !strings.HasPrefix(port, "part") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(port, "part"))
	if err != nil {
		return 0, false
	}
	return n, true
}
