package codegen

import (
	"fmt"
	"strings"

	"tensorc/internal/types"
)

// dims converts a fully-resolved shape to plain ints; callers must only
// invoke this once every dimension is concrete (i.e. post-resolver).
func dims(s types.Shape) []int64 {
	out := make([]int64, len(s))
	for i, d := range s {
		out[i] = d.Value
	}
	return out
}

// rowMajorStrides computes default row-major strides for a concrete shape:
// the last dimension has stride 1, each earlier dimension's stride is the
// product of every dimension to its right.
func rowMajorStrides(sizes []int64) []int64 {
	strides := make([]int64, len(sizes))
	acc := int64(1)
	for i := len(sizes) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= sizes[i]
	}
	return strides
}

func elementCount(sizes []int64) int64 {
	total := int64(1)
	for _, s := range sizes {
		total *= s
	}
	return total
}

// broadcastIndexExpr returns a C expression computing producer's flat buffer
// index from consumerIdx, a flat index over consumerShape. When the shapes
// are identical the expression is just consumerIdx; otherwise the producer
// is right-aligned against the consumer's rank (padding missing leading
// dims with size 1) and broadcast dims (producer size 1 against a larger
// consumer size) get a zero stride, per spec.md §4.8 rule 4.
//
// This handles broadcasting only: elementwise op inputs, where a lower-rank
// producer (including a rank-0 scalar) is padded as described above, and
// MatMul's batch prefix. Reshape is a different operation — a row-major identity flatten,
// not a broadcast — and must never be routed through this function; see
// emitElementwiseGroup's Reshape special case.
func broadcastIndexExpr(producerShape, consumerShape types.Shape, consumerIdx string) string {
	cSizes := dims(consumerShape)
	pSizesRaw := dims(producerShape)

	if len(pSizesRaw) == 0 {
		return "0"
	}

	rank := len(cSizes)
	pad := rank - len(pSizesRaw)
	pSizes := make([]int64, rank)
	for i := 0; i < rank; i++ {
		if i < pad {
			pSizes[i] = 1
		} else {
			pSizes[i] = pSizesRaw[i-pad]
		}
	}

	identical := true
	for i := 0; i < rank; i++ {
		if pSizes[i] != cSizes[i] {
			identical = false
			break
		}
	}
	if identical {
		return consumerIdx
	}

	cStrides := rowMajorStrides(cSizes)
	pStrides := rowMajorStrides(pSizes)

	var terms []string
	for d := 0; d < rank; d++ {
		if pSizes[d] == 1 {
			continue // broadcast dim contributes a zero stride: omit the term entirely
		}
		var idxTerm string
		if cSizes[d] == 1 {
			idxTerm = "0"
		} else if cStrides[d] == 1 {
			idxTerm = fmt.Sprintf("((%s) %% %d)", consumerIdx, cSizes[d])
		} else {
			idxTerm = fmt.Sprintf("(((%s) / %d) %% %d)", consumerIdx, cStrides[d], cSizes[d])
		}
		terms = append(terms, fmt.Sprintf("(%s) * %d", idxTerm, pStrides[d]))
	}
	if len(terms) == 0 {
		return "0"
	}
	return strings.Join(terms, " + ")
}
