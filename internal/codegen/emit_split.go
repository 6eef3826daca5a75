package codegen

import (
	"fmt"
	"strings"

	"tensorc/internal/ir"
)

// emitSplit renders a straight copy over parts x element_count, the output
// buffer treated as parts consecutive tiles laid out with the same
// row-major strides as one tile (spec.md §4.8). The nested loop runs over
// the input's dims; the split axis index decomposes into a tile number and
// a within-tile local index.
func (e *emitter) emitSplit(idx ir.NodeIndex) string {
	n := e.lg.Nodes[idx]
	inSlot := n.Inputs[0]
	inSizes := dims(inSlot.ProducerShape)
	inStrides := rowMajorStrides(inSizes)
	rank := len(inSizes)
	axis := n.Op.Axis

	tileSizes := make([]int64, rank)
	copy(tileSizes, inSizes)
	tileSizes[axis] = n.Shape[axis].Value
	tileStrides := rowMajorStrides(tileSizes)
	tileElemCount := elementCount(tileSizes)

	var b strings.Builder
	for d := 0; d < rank; d++ {
		fmt.Fprintf(&b, "for (int64_t r%d = 0; r%d < %d; r%d++) {\n", d, d, inSizes[d], d)
	}
	fmt.Fprintf(&b, "    int64_t tile = r%d / %d;\n", axis, tileSizes[axis])
	fmt.Fprintf(&b, "    int64_t local_axis = r%d %% %d;\n", axis, tileSizes[axis])

	var inTerms []string
	for d := 0; d < rank; d++ {
		inTerms = append(inTerms, fmt.Sprintf("r%d * %d", d, inStrides[d]))
	}
	inIdx := strings.Join(inTerms, " + ")

	var localTerms []string
	for d := 0; d < rank; d++ {
		if d == axis {
			localTerms = append(localTerms, fmt.Sprintf("local_axis * %d", tileStrides[d]))
		} else {
			localTerms = append(localTerms, fmt.Sprintf("r%d * %d", d, tileStrides[d]))
		}
	}
	localIdx := strings.Join(localTerms, " + ")
	outIdx := fmt.Sprintf("tile * %d + (%s)", tileElemCount, localIdx)

	target := e.targetExpr(idx)
	inAccess := e.producerAccessRaw(inSlot, inIdx)
	stmt := n.Op.EmitKernel(fmt.Sprintf(target, outIdx), []string{inAccess})
	b.WriteString("    " + stmt + "\n")

	for d := 0; d < rank; d++ {
		b.WriteString("}\n")
	}
	return b.String()
}
