package compiler

import (
	"testing"

	"tensorc/internal/cache"
	"tensorc/internal/ir"
	"tensorc/internal/linearizer"
	"tensorc/internal/ops"
	"tensorc/internal/types"
)

func buildLinear(t *testing.T) *ir.LinearGraph {
	t.Helper()
	raw := ir.NewRawGraph()
	in := raw.AddNode("inputs.x", ops.Op{Kind: ops.Input, Name: "x"})
	out := raw.AddNode("outputs.y", ops.Op{Kind: ops.Output, Name: "y"})
	raw.AddEdge(in, "out", out, "in")
	resolved := &ir.ResolvedGraph{
		Order: []ir.NodeIndex{in, out},
		Edges: raw.Edges,
		Nodes: []ir.ResolvedNode{
			{ID: "inputs.x", Op: raw.Nodes[in].Op, Shape: types.Shape{types.Concrete(4)}, Datatype: types.F32},
			{ID: "outputs.y", Op: raw.Nodes[out].Op, Shape: types.Shape{types.Concrete(4)}, Datatype: types.F32},
		},
	}
	lg, err := linearizer.Linearize(resolved)
	if err != nil {
		t.Fatalf("linearize: %v", err)
	}
	return lg
}

func TestCompileProgramsStageEmitPopulatesCache(t *testing.T) {
	c, err := cache.Open(cache.DefaultDSN)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer c.Close()

	lg := buildLinear(t)
	stage := CompileProgramsStage{Cache: c}

	header1, source1, err := stage.emit("P", lg)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	key := cache.Key("P", lg.Canonical(), emitterConfigVersion)
	entry, ok, err := c.Lookup(key)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !ok {
		t.Fatalf("expected cache entry after emit")
	}
	if entry.Header != header1 || entry.Source != source1 {
		t.Fatalf("cached entry does not match emitted output")
	}

	header2, source2, err := stage.emit("P", lg)
	if err != nil {
		t.Fatalf("second emit: %v", err)
	}
	if header2 != header1 || source2 != source1 {
		t.Fatalf("cache hit produced different output than the original emission")
	}
}

func TestCompileProgramsStageEmitWithoutCache(t *testing.T) {
	lg := buildLinear(t)
	stage := CompileProgramsStage{}

	header, source, err := stage.emit("P", lg)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if header == "" || source == "" {
		t.Fatalf("expected non-empty header/source without a cache")
	}
}
