package ops

import (
	"testing"

	"tensorc/internal/types"
)

func TestBroadcastShapesElementwise(t *testing.T) {
	a := types.Shape{types.Concrete(2), types.Concrete(3)}
	b := types.Shape{types.Concrete(1), types.Concrete(3)}
	out, err := BroadcastShapes(a, b, "n1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := types.Shape{types.Concrete(2), types.Concrete(3)}
	if out.String() != want.String() {
		t.Fatalf("got %s, want %s", out.String(), want.String())
	}
}

func TestReduceSumNegativeAxis(t *testing.T) {
	op := Op{Kind: ReduceSum, Axis: -1}
	in := types.Shape{types.Concrete(2), types.Concrete(3), types.Concrete(4)}
	out, err := op.InferShape([]types.Shape{in}, "n1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := types.Shape{types.Concrete(2), types.Concrete(3)}
	if out.String() != want.String() {
		t.Fatalf("got %s, want %s", out.String(), want.String())
	}
}

func TestReduceSumRankZeroPromotion(t *testing.T) {
	op := Op{Kind: ReduceSum, Axis: 0}
	in := types.Shape{types.Concrete(5)}
	out, err := op.InferShape([]types.Shape{in}, "n1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "[1]" {
		t.Fatalf("expected rank-0 promotion to [1], got %s", out.String())
	}
}

func TestMatMulBroadcastBatch(t *testing.T) {
	op := Op{Kind: MatMul}
	a := types.Shape{types.Concrete(2), types.Concrete(3), types.Concrete(4)}
	b := types.Shape{types.Concrete(4), types.Concrete(5)}
	out, err := op.InferShape([]types.Shape{a, b}, "n1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := types.Shape{types.Concrete(2), types.Concrete(3), types.Concrete(5)}
	if out.String() != want.String() {
		t.Fatalf("got %s, want %s", out.String(), want.String())
	}
}

func TestTransposePermutationMustBeBijection(t *testing.T) {
	op := Op{Kind: Transpose, Permutation: []int{0, 0}}
	in := types.Shape{types.Concrete(2), types.Concrete(3)}
	if _, err := op.InferShape([]types.Shape{in}, "n1"); err == nil {
		t.Fatal("expected error for non-bijective permutation")
	}
}

func TestSplitDivisible(t *testing.T) {
	op := Op{Kind: Split, Axis: 0, Parts: 3}
	in := types.Shape{types.Concrete(6), types.Concrete(2)}
	out, err := op.InferSplitShape(in, 0, "n1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := types.Shape{types.Concrete(2), types.Concrete(2)}
	if out.String() != want.String() {
		t.Fatalf("got %s, want %s", out.String(), want.String())
	}
}

func TestSplitIndivisibleFails(t *testing.T) {
	op := Op{Kind: Split, Axis: 0, Parts: 4}
	in := types.Shape{types.Concrete(6)}
	if _, err := op.InferSplitShape(in, 0, "n1"); err == nil {
		t.Fatal("expected error for indivisible split")
	}
}

func TestReshapeWildcard(t *testing.T) {
	op := Op{Kind: Reshape, NewShape: types.Shape{types.Concrete(3), types.Wildcard()}}
	in := types.Shape{types.Concrete(2), types.Concrete(6)}
	out, err := op.InferShape([]types.Shape{in}, "n1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out[1].Equal(types.Concrete(4)) {
		t.Fatalf("expected wildcard to resolve to 4, got %s", out.String())
	}
}
