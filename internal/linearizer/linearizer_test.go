package linearizer

import (
	"testing"

	"tensorc/internal/ir"
	"tensorc/internal/ops"
	"tensorc/internal/types"
)

func buildResolved() *ir.ResolvedGraph {
	raw := ir.NewRawGraph()
	in := raw.AddNode("inputs.x", ops.Op{Kind: ops.Input, Name: "x"})
	sinx := raw.AddNode("sinx", ops.Op{Kind: ops.Sin})
	absx := raw.AddNode("absx", ops.Op{Kind: ops.Abs})
	out := raw.AddNode("outputs.y", ops.Op{Kind: ops.Output, Name: "y"})
	raw.AddEdge(in, "out", sinx, "in")
	raw.AddEdge(sinx, "out", absx, "in")
	raw.AddEdge(absx, "out", out, "in")

	shape := types.Shape{types.Concrete(4)}
	return &ir.ResolvedGraph{
		Order: []ir.NodeIndex{in, sinx, absx, out},
		Edges: raw.Edges,
		Nodes: []ir.ResolvedNode{
			{ID: "inputs.x", Op: raw.Nodes[in].Op, Shape: shape, Datatype: types.F32},
			{ID: "sinx", Op: raw.Nodes[sinx].Op, Shape: shape, Datatype: types.F32},
			{ID: "absx", Op: raw.Nodes[absx].Op, Shape: shape, Datatype: types.F32},
			{ID: "outputs.y", Op: raw.Nodes[out].Op, Shape: shape, Datatype: types.F32},
		},
	}
}

func TestLinearizeAssignsWorkspace(t *testing.T) {
	resolved := buildResolved()
	lg, err := Linearize(resolved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := lg.Slots[0]; ok {
		t.Fatal("Input node should not get a workspace slot")
	}
	if _, ok := lg.Slots[3]; ok {
		t.Fatal("Output node should not get a workspace slot")
	}
	sinxSlot, ok := lg.Slots[1]
	if !ok || sinxSlot.ElementCount != 4 {
		t.Fatalf("expected sinx slot with 4 elements, got %+v ok=%v", sinxSlot, ok)
	}
	absxSlot := lg.Slots[2]
	if absxSlot.Offset == sinxSlot.Offset {
		t.Fatal("expected disjoint offsets")
	}
}

func TestLinearizeFusesAdjacentElementwise(t *testing.T) {
	resolved := buildResolved()
	lg, err := Linearize(resolved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	total := 0
	for _, g := range lg.Groups {
		total += len(g)
	}
	if total != len(lg.Order) {
		t.Fatalf("groups must partition all %d nodes, covered %d", len(lg.Order), total)
	}
	fused := false
	for _, g := range lg.Groups {
		if len(g) == 2 && g[0] == 1 && g[1] == 2 {
			fused = true
		}
	}
	if !fused {
		t.Fatalf("expected sinx and absx fused into one group, got %v", lg.Groups)
	}
}
