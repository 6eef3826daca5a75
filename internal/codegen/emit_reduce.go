package codegen

import (
	"fmt"
	"strings"

	"tensorc/internal/ir"
)

// emitReduceSum renders a ReduceSum node as a zero-init loop over the output
// followed by an n-deep nested loop over the input's dims, accumulating
// into the output position every dim but the reduced axis maps to
// (spec.md §4.8).
func (e *emitter) emitReduceSum(idx ir.NodeIndex) string {
	n := e.lg.Nodes[idx]
	inSlot := n.Inputs[0]
	inSizes := dims(inSlot.ProducerShape)
	inStrides := rowMajorStrides(inSizes)
	rank := len(inSizes)

	axis := n.Op.Axis
	if axis < 0 {
		axis += rank
	}

	var nonAxisSizes []int64
	for i, s := range inSizes {
		if i != axis {
			nonAxisSizes = append(nonAxisSizes, s)
		}
	}
	outStrides := rowMajorStrides(nonAxisSizes)
	outCount := elementCount(nonAxisSizes)

	target := e.targetExpr(idx)
	var b strings.Builder
	fmt.Fprintf(&b, "for (int64_t o = 0; o < %d; o++) { %s = 0; }\n", outCount, fmt.Sprintf(target, "o"))

	for d := 0; d < rank; d++ {
		fmt.Fprintf(&b, "for (int64_t r%d = 0; r%d < %d; r%d++) {\n", d, d, inSizes[d], d)
	}

	var inTerms []string
	for d := 0; d < rank; d++ {
		inTerms = append(inTerms, fmt.Sprintf("r%d * %d", d, inStrides[d]))
	}
	inIdx := strings.Join(inTerms, " + ")

	var outTerms []string
	pos := 0
	for d := 0; d < rank; d++ {
		if d == axis {
			continue
		}
		outTerms = append(outTerms, fmt.Sprintf("r%d * %d", d, outStrides[pos]))
		pos++
	}
	outIdx := "0"
	if len(outTerms) > 0 {
		outIdx = strings.Join(outTerms, " + ")
	}

	inAccess := e.producerAccessRaw(inSlot, inIdx)
	stmt := n.Op.EmitKernel(fmt.Sprintf(target, outIdx), []string{inAccess})
	b.WriteString("    " + stmt + "\n")

	for d := 0; d < rank; d++ {
		b.WriteString("}\n")
	}
	return b.String()
}
