package ops

import (
	"fmt"

	cerrors "tensorc/internal/errors"
	"tensorc/internal/types"
)

// InferShape applies op's shape rule to its producer input shapes, returning
// the result shape or a structured error naming the specific incompatibility.
// InferShape is pure and deterministic: it never mutates its arguments.
func (op Op) InferShape(inputs []types.Shape, node string) (types.Shape, error) {
	switch op.Kind {
	case Input:
		return nil, cerrors.New(cerrors.OperatorMisuse, node, "Input shape must be seeded by the resolver, not inferred")
	case Constant:
		return types.Shape{types.Concrete(int64(len(op.Values)))}, nil
	case Output:
		if len(inputs) != 1 {
			return nil, arityErr(node, "Output", 1, len(inputs))
		}
		return inputs[0], nil
	case Split:
		if len(inputs) != 1 {
			return nil, arityErr(node, "Split", 1, len(inputs))
		}
		return nil, nil // Split's per-output shape is computed by InferSplitShape.
	}

	if IsUnary(op.Kind) {
		if len(inputs) != 1 {
			return nil, arityErr(node, string(op.Kind), 1, len(inputs))
		}
		return inputs[0].Clone(), nil
	}

	if IsBinary(op.Kind) {
		if len(inputs) != 2 {
			return nil, arityErr(node, string(op.Kind), 2, len(inputs))
		}
		return BroadcastShapes(inputs[0], inputs[1], node)
	}

	switch op.Kind {
	case Reshape:
		if len(inputs) != 1 {
			return nil, arityErr(node, "Reshape", 1, len(inputs))
		}
		return resolveReshape(inputs[0], op.NewShape, node)
	case Transpose:
		if len(inputs) != 1 {
			return nil, arityErr(node, "Transpose", 1, len(inputs))
		}
		return resolveTranspose(inputs[0], op.Permutation, node)
	case ReduceSum:
		if len(inputs) != 1 {
			return nil, arityErr(node, "ReduceSum", 1, len(inputs))
		}
		return resolveReduceSum(inputs[0], op.Axis, node)
	case MatMul:
		if len(inputs) != 2 {
			return nil, arityErr(node, "MatMul", 2, len(inputs))
		}
		return resolveMatMul(inputs[0], inputs[1], node)
	}

	return nil, cerrors.New(cerrors.OperatorMisuse, node, "unknown operator kind %q", op.Kind)
}

// InferSplitShape computes the shape of the given part index of a Split
// node, since Split is the only operator with more than one output shape.
func (op Op) InferSplitShape(input types.Shape, partIndex int, node string) (types.Shape, error) {
	if op.Axis < 0 || op.Axis >= input.Rank() {
		return nil, cerrors.New(cerrors.OperatorMisuse, node, "split axis %d out of range for rank %d", op.Axis, input.Rank())
	}
	axisDim := input[op.Axis]
	out := input.Clone()
	if axisDim.IsConcrete() {
		if op.Parts == 0 || axisDim.Value%int64(op.Parts) != 0 {
			return nil, cerrors.New(cerrors.OperatorMisuse, node, "split axis dim %d not divisible by parts %d", axisDim.Value, op.Parts)
		}
		out[op.Axis] = types.Concrete(axisDim.Value / int64(op.Parts))
	} else {
		out[op.Axis] = types.NewArith(types.OpDiv, axisDim, types.Concrete(int64(op.Parts)))
	}
	_ = partIndex // every tile shares the same shape; index only selects the workspace slice
	return out, nil
}

func arityErr(node, opName string, want, got int) error {
	return cerrors.New(cerrors.OperatorMisuse, node, "%s expects %d input(s), got %d", opName, want, got)
}

// BroadcastShapes implements the right-aligned broadcast rule shared by
// elementwise binary ops and MatMul's batch prefix. The resolver's
// unification step uses its own per-dimension rule (unifyDim), not this.
func BroadcastShapes(a, b types.Shape, node string) (types.Shape, error) {
	rank := a.Rank()
	if b.Rank() > rank {
		rank = b.Rank()
	}
	out := make(types.Shape, rank)
	for i := 0; i < rank; i++ {
		ai := dimFromRight(a, i)
		bi := dimFromRight(b, i)
		d, err := broadcastDim(ai, bi)
		if err != nil {
			return nil, cerrors.New(cerrors.ShapeMismatch, node, "cannot broadcast %s and %s", a.String(), b.String()).WithDetail(err.Error())
		}
		out[rank-1-i] = d
	}
	return out, nil
}

func dimFromRight(s types.Shape, i int) types.Dimension {
	idx := s.Rank() - 1 - i
	if idx < 0 {
		return types.Concrete(1)
	}
	return s[idx]
}

func broadcastDim(a, b types.Dimension) (types.Dimension, error) {
	if a.Kind == types.DimWildcard {
		return b, nil
	}
	if b.Kind == types.DimWildcard {
		return a, nil
	}
	if a.IsConcrete() && b.IsConcrete() {
		if a.Value == b.Value {
			return a, nil
		}
		if a.Value == 1 {
			return b, nil
		}
		if b.Value == 1 {
			return a, nil
		}
		return types.Dimension{}, fmt.Errorf("incompatible dims %d and %d", a.Value, b.Value)
	}
	if a.IsConcrete() && a.Value == 1 {
		return b, nil
	}
	if b.IsConcrete() && b.Value == 1 {
		return a, nil
	}
	if a.Kind == types.DimSymbol && b.Kind == types.DimSymbol && a.Symbol == b.Symbol {
		return a, nil
	}
	// Leave genuinely unresolved symbolic/concrete mismatches to the
	// resolver's manifest-parameter-aware unification pass; here we pick
	// the left-hand side as a provisional result.
	return a, nil
}

func resolveReshape(input types.Shape, target types.Shape, node string) (types.Shape, error) {
	expanded, err := expandReshapeEllipsis(input, target)
	if err != nil {
		return nil, err
	}
	wildcardAt := -1
	known := types.Concrete(1)
	for i, d := range expanded {
		if d.Kind == types.DimWildcard {
			if wildcardAt != -1 {
				return nil, cerrors.New(cerrors.OperatorMisuse, node, "Reshape target may contain at most one wildcard dim")
			}
			wildcardAt = i
			continue
		}
		known = types.NewArith(types.OpMul, known, d)
	}
	if wildcardAt == -1 {
		return expanded, nil
	}
	inVolume := input.ElementCount()
	out := expanded.Clone()
	out[wildcardAt] = types.NewArith(types.OpDiv, inVolume, known)
	return out, nil
}

// expandReshapeEllipsis replaces a single `...` entry in target, if present,
// with the run of input dims it stands for: enough leading input dims to
// make the remaining (non-ellipsis) target entries account for the rest of
// input's rank.
func expandReshapeEllipsis(input, target types.Shape) (types.Shape, error) {
	ellipsisAt := -1
	for i, d := range target {
		if d.Kind == types.DimEllipsis {
			if ellipsisAt != -1 {
				return nil, cerrors.New(cerrors.OperatorMisuse, "", "Reshape target may contain at most one ellipsis")
			}
			ellipsisAt = i
		}
	}
	if ellipsisAt == -1 {
		return target, nil
	}
	fixedCount := len(target) - 1
	copyCount := input.Rank() - fixedCount
	if copyCount < 0 {
		copyCount = 0
	}
	out := make(types.Shape, 0, len(target)-1+copyCount)
	out = append(out, target[:ellipsisAt]...)
	for i := 0; i < copyCount; i++ {
		out = append(out, input[i])
	}
	out = append(out, target[ellipsisAt+1:]...)
	return out, nil
}

func resolveTranspose(input types.Shape, perm []int, node string) (types.Shape, error) {
	rank := input.Rank()
	if len(perm) != rank {
		return nil, cerrors.New(cerrors.OperatorMisuse, node, "Transpose permutation length %d does not match rank %d", len(perm), rank)
	}
	seen := make([]bool, rank)
	out := make(types.Shape, rank)
	for i, p := range perm {
		if p < 0 || p >= rank || seen[p] {
			return nil, cerrors.New(cerrors.OperatorMisuse, node, "Transpose permutation is not a bijection on [0, %d)", rank)
		}
		seen[p] = true
		out[i] = input[p]
	}
	return out, nil
}

func resolveReduceSum(input types.Shape, axis int, node string) (types.Shape, error) {
	rank := input.Rank()
	idx := axis
	if idx < 0 {
		idx = rank + idx
	}
	if idx < 0 || idx >= rank {
		return nil, cerrors.New(cerrors.OperatorMisuse, node, "ReduceSum axis %d out of range for rank %d", axis, rank)
	}
	out := make(types.Shape, 0, rank-1)
	for i, d := range input {
		if i == idx {
			continue
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		out = types.Shape{types.Concrete(1)}
	}
	return out, nil
}

func resolveMatMul(a, b types.Shape, node string) (types.Shape, error) {
	if a.Rank() < 2 || b.Rank() < 2 {
		return nil, cerrors.New(cerrors.OperatorMisuse, node, "MatMul requires rank >= 2 inputs, got ranks %d and %d", a.Rank(), b.Rank())
	}
	k1 := a[a.Rank()-1]
	k0 := b[b.Rank()-2]
	if !dimsCompatible(k1, k0) {
		return nil, cerrors.New(cerrors.ShapeMismatch, node, "MatMul inner dims %s and %s are incompatible", k1.String(), k0.String())
	}
	aBatch := a[:a.Rank()-2]
	bBatch := b[:b.Rank()-2]
	batch, err := BroadcastShapes(aBatch, bBatch, node)
	if err != nil {
		return nil, err
	}
	m := a[a.Rank()-2]
	n := b[b.Rank()-1]
	out := append(types.Shape{}, batch...)
	out = append(out, m, n)
	return out, nil
}

func dimsCompatible(a, b types.Dimension) bool {
	if a.Kind == types.DimWildcard || b.Kind == types.DimWildcard {
		return true
	}
	if a.IsConcrete() && b.IsConcrete() {
		return a.Value == b.Value
	}
	if a.Kind == types.DimSymbol && b.Kind == types.DimSymbol {
		return a.Symbol == b.Symbol
	}
	return true
}
