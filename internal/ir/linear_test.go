package ir

import (
	"testing"

	"tensorc/internal/ops"
	"tensorc/internal/types"
)

// buildArithLinear constructs an equivalent LinearGraph each call, but with
// fresh *Dimension arithmetic nodes (distinct pointer identities) every
// time, the way two separate resolver runs over the same manifest would.
func buildArithLinear() *LinearGraph {
	n := types.NewArith(types.OpMul, types.Sym("batch"), types.Concrete(3))
	shape := types.Shape{n, types.Concrete(4)}

	node := LinearNode{
		ID:       "sum",
		Op:       ops.Op{Kind: ops.Add},
		Shape:    shape,
		Datatype: types.F32,
		Inputs: []InputSlot{
			{Producer: 0, ProducerPort: "out", ProducerShape: shape},
		},
	}

	return &LinearGraph{
		Nodes:              []LinearNode{node},
		Order:              []NodeIndex{0},
		Slots:              map[NodeIndex]WorkspaceSlot{0: {Node: 0, Offset: 0, ElementCount: 12}},
		TotalWorkspaceElem: 12,
		Groups:             [][]NodeIndex{{0}},
	}
}

func TestCanonicalIsStableAcrossSeparatelyBuiltDimensionPointers(t *testing.T) {
	a := buildArithLinear()
	b := buildArithLinear()

	ca := a.Canonical()
	cb := b.Canonical()

	if ca != cb {
		t.Fatalf("Canonical() is not stable across distinct *Dimension pointer identities:\n%s\n---\n%s", ca, cb)
	}
	if ca == "" {
		t.Fatalf("expected non-empty canonical output")
	}
}

func TestCanonicalDiffersWhenShapeDiffers(t *testing.T) {
	a := buildArithLinear()
	b := buildArithLinear()
	b.Nodes[0].Shape = types.Shape{types.Concrete(99)}
	b.Nodes[0].Inputs[0].ProducerShape = b.Nodes[0].Shape

	if a.Canonical() == b.Canonical() {
		t.Fatalf("expected Canonical() to change when node shape changes")
	}
}
