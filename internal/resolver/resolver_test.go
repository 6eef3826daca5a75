package resolver

import (
	"testing"

	"tensorc/internal/ir"
	"tensorc/internal/ops"
	"tensorc/internal/types"
)

func TestResolveElementwisePipeline(t *testing.T) {
	raw := ir.NewRawGraph()
	in := raw.AddNode("inputs.x", ops.Op{Kind: ops.Input, Name: "x"})
	sinx := raw.AddNode("sinx", ops.Op{Kind: ops.Sin})
	one := raw.AddNode("one", ops.Op{Kind: ops.Constant, Values: []float32{1}})
	sum := raw.AddNode("sum", ops.Op{Kind: ops.Add})
	out := raw.AddNode("outputs.y", ops.Op{Kind: ops.Output, Name: "y"})

	raw.AddEdge(in, "out", sinx, "in")
	raw.AddEdge(sinx, "out", sum, "a")
	raw.AddEdge(one, "out", sum, "b")
	raw.AddEdge(sum, "out", out, "in")

	resolved, err := Resolve(raw, Options{
		InputSpecs: map[string]types.Port{"x": {Name: "x", Shape: types.Shape{types.Concrete(4)}, Datatype: types.F32}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, n := range resolved.Nodes {
		if !n.Shape.IsResolved() {
			t.Fatalf("node %s not fully resolved: %s", n.ID, n.Shape.String())
		}
	}
	if resolved.Nodes[sum].Shape.String() != "[4]" {
		t.Fatalf("expected sum shape [4], got %s", resolved.Nodes[sum].Shape.String())
	}
}

func TestResolveFailsOnUnresolvedWildcard(t *testing.T) {
	raw := ir.NewRawGraph()
	in := raw.AddNode("inputs.x", ops.Op{Kind: ops.Input, Name: "x"})
	out := raw.AddNode("outputs.y", ops.Op{Kind: ops.Output, Name: "y"})
	raw.AddEdge(in, "out", out, "in")

	_, err := Resolve(raw, Options{
		InputSpecs: map[string]types.Port{"x": {Name: "x", Shape: types.Shape{types.Wildcard()}, Datatype: types.F32}},
	})
	if err == nil {
		t.Fatal("expected UnresolvedDimension error")
	}
}

func TestResolveMatMulBroadcastBatch(t *testing.T) {
	raw := ir.NewRawGraph()
	a := raw.AddNode("inputs.a", ops.Op{Kind: ops.Input, Name: "a"})
	b := raw.AddNode("inputs.b", ops.Op{Kind: ops.Input, Name: "b"})
	mm := raw.AddNode("mm", ops.Op{Kind: ops.MatMul})
	out := raw.AddNode("outputs.y", ops.Op{Kind: ops.Output, Name: "y"})
	raw.AddEdge(a, "out", mm, "a")
	raw.AddEdge(b, "out", mm, "b")
	raw.AddEdge(mm, "out", out, "in")

	resolved, err := Resolve(raw, Options{
		InputSpecs: map[string]types.Port{
			"a": {Name: "a", Shape: types.Shape{types.Concrete(2), types.Concrete(3), types.Concrete(4)}, Datatype: types.F32},
			"b": {Name: "b", Shape: types.Shape{types.Concrete(4), types.Concrete(5)}, Datatype: types.F32},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Nodes[mm].Shape.String() != "[2, 3, 5]" {
		t.Fatalf("unexpected matmul shape: %s", resolved.Nodes[mm].Shape.String())
	}
}

func TestResolveCycleDetected(t *testing.T) {
	raw := ir.NewRawGraph()
	a := raw.AddNode("a", ops.Op{Kind: ops.Sin})
	b := raw.AddNode("b", ops.Op{Kind: ops.Sin})
	raw.AddEdge(a, "out", b, "in")
	raw.AddEdge(b, "out", a, "in")

	_, err := Resolve(raw, Options{})
	if err == nil {
		t.Fatal("expected cycle error")
	}
}
