package codegen

import (
	"fmt"
	"strings"

	"tensorc/internal/ir"
)

// emitTranspose renders an n-deep nested loop over the input's dims,
// writing out[perm_index] = in[linear_index] (spec.md §4.8). Output axis i
// reads input axis op.Permutation[i], per resolveTranspose.
func (e *emitter) emitTranspose(idx ir.NodeIndex) string {
	n := e.lg.Nodes[idx]
	inSlot := n.Inputs[0]
	inSizes := dims(inSlot.ProducerShape)
	inStrides := rowMajorStrides(inSizes)
	outSizes := dims(n.Shape)
	outStrides := rowMajorStrides(outSizes)
	rank := len(inSizes)
	perm := n.Op.Permutation

	var b strings.Builder
	for d := 0; d < rank; d++ {
		fmt.Fprintf(&b, "for (int64_t r%d = 0; r%d < %d; r%d++) {\n", d, d, inSizes[d], d)
	}

	var inTerms []string
	for d := 0; d < rank; d++ {
		inTerms = append(inTerms, fmt.Sprintf("r%d * %d", d, inStrides[d]))
	}
	inIdx := strings.Join(inTerms, " + ")

	var outTerms []string
	for i := 0; i < rank; i++ {
		outTerms = append(outTerms, fmt.Sprintf("r%d * %d", perm[i], outStrides[i]))
	}
	outIdx := strings.Join(outTerms, " + ")

	target := e.targetExpr(idx)
	inAccess := e.producerAccessRaw(inSlot, inIdx)
	stmt := n.Op.EmitKernel(fmt.Sprintf(target, outIdx), []string{inAccess})
	b.WriteString("    " + stmt + "\n")

	for d := 0; d < rank; d++ {
		b.WriteString("}\n")
	}
	return b.String()
}
