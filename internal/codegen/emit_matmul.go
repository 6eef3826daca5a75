package codegen

import (
	"fmt"
	"strings"

	"tensorc/internal/ir"
)

// emitMatMul renders a MatMul node as a batch loop wrapping the standard
// (i, j, k) contraction triple, with batch and M/K/N taken from the two
// input shapes' right-aligned broadcast (spec.md §4.8).
func (e *emitter) emitMatMul(idx ir.NodeIndex) string {
	n := e.lg.Nodes[idx]
	aSlot, bSlot := n.Inputs[0], n.Inputs[1]
	aShape, bShape, outShape := aSlot.ProducerShape, bSlot.ProducerShape, n.Shape

	aBatch, bBatch, outBatch := aShape[:len(aShape)-2], bShape[:len(bShape)-2], outShape[:len(outShape)-2]
	m := outShape[len(outShape)-2].Value
	nn := outShape[len(outShape)-1].Value
	k := aShape[len(aShape)-1].Value

	batchCount := elementCount(dims(outBatch))

	aBatchIdx := broadcastIndexExpr(aBatch, outBatch, "b")
	bBatchIdx := broadcastIndexExpr(bBatch, outBatch, "b")
	aOffset := fmt.Sprintf("(%s) * %d", aBatchIdx, m*k)
	bOffset := fmt.Sprintf("(%s) * %d", bBatchIdx, k*nn)
	outOffset := fmt.Sprintf("(b) * %d", m*nn)

	target := e.targetExpr(idx)
	var b strings.Builder
	fmt.Fprintf(&b, "for (int64_t b = 0; b < %d; b++) {\n", batchCount)
	fmt.Fprintf(&b, "for (int64_t i = 0; i < %d; i++) {\n", m)
	fmt.Fprintf(&b, "for (int64_t j = 0; j < %d; j++) {\n", nn)
	outIdx := fmt.Sprintf("%s + i * %d + j", outOffset, nn)
	fmt.Fprintf(&b, "    %s = 0;\n", fmt.Sprintf(target, outIdx))
	fmt.Fprintf(&b, "    for (int64_t k = 0; k < %d; k++) {\n", k)
	aIdx := fmt.Sprintf("%s + i * %d + k", aOffset, k)
	bIdx := fmt.Sprintf("%s + k * %d + j", bOffset, nn)
	aAccess := e.producerAccessRaw(aSlot, aIdx)
	bAccess := e.producerAccessRaw(bSlot, bIdx)
	stmt := n.Op.EmitKernel(fmt.Sprintf(target, outIdx), []string{aAccess, bAccess})
	fmt.Fprintf(&b, "        %s\n", stmt)
	b.WriteString("    }\n")
	b.WriteString("}\n}\n}\n")
	return b.String()
}
