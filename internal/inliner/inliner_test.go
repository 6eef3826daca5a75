package inliner

import (
	"os"
	"path/filepath"
	"testing"

	"tensorc/internal/graphload"
)

func writeGraph(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write graph %s: %v", name, err)
	}
	return path
}

func TestInlineFlatGraph(t *testing.T) {
	dir := t.TempDir()
	path := writeGraph(t, dir, "p.json", `{
		"inputs": [{"name": "x"}],
		"outputs": [{"name": "y"}],
		"nodes": [
			{"id": "sinx", "op": "Sin"},
			{"id": "one", "op": {"Constant": {"values": [1.0]}}},
			{"id": "sum", "op": "Add"}
		],
		"links": [
			["inputs.x", "sinx.in"],
			["sinx.out", "sum.a"],
			["one.out", "sum.b"],
			["sum.out", "outputs.y"]
		]
	}`)

	g, err := graphload.Parse(path)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	raw, err := Inline(g, Options{})
	if err != nil {
		t.Fatalf("inline error: %v", err)
	}

	// sinx, one, sum, inputs.x, outputs.y
	if len(raw.Nodes) != 5 {
		t.Fatalf("expected 5 nodes, got %d: %+v", len(raw.Nodes), raw.Nodes)
	}
	if len(raw.Edges) != 4 {
		t.Fatalf("expected 4 edges, got %d", len(raw.Edges))
	}
}

func TestInlineSubgraphReference(t *testing.T) {
	dir := t.TempDir()
	writeGraph(t, dir, "double.json", `{
		"inputs": [{"name": "in"}],
		"outputs": [{"name": "out"}],
		"nodes": [
			{"id": "two", "op": {"Constant": {"values": [2.0]}}},
			{"id": "mul", "op": "Mul"}
		],
		"links": [
			["inputs.in", "mul.a"],
			["two.out", "mul.b"],
			["mul.out", "outputs.out"]
		]
	}`)

	path := writeGraph(t, dir, "top.json", `{
		"inputs": [{"name": "x"}],
		"outputs": [{"name": "y"}],
		"nodes": [
			{"id": "d", "subgraph": "double"}
		],
		"links": [
			["inputs.x", "d.in"],
			["d.out", "outputs.y"]
		]
	}`)

	g, err := graphload.Parse(path)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	raw, err := Inline(g, Options{})
	if err != nil {
		t.Fatalf("inline error: %v", err)
	}

	// two, mul (from the inlined sub-graph), inputs.x, outputs.y
	if len(raw.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d: %+v", len(raw.Nodes), raw.Nodes)
	}
	found := false
	for _, n := range raw.Nodes {
		if n.ID == "d/mul" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected prefixed node id d/mul, got %+v", raw.Nodes)
	}
}

func TestInlineDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	writeGraph(t, dir, "a.json", `{
		"inputs": [{"name": "in"}],
		"outputs": [{"name": "out"}],
		"nodes": [{"id": "b", "subgraph": "b"}],
		"links": [["inputs.in", "b.in"], ["b.out", "outputs.out"]]
	}`)
	path := writeGraph(t, dir, "b.json", `{
		"inputs": [{"name": "in"}],
		"outputs": [{"name": "out"}],
		"nodes": [{"id": "a", "subgraph": "a"}],
		"links": [["inputs.in", "a.in"], ["a.out", "outputs.out"]]
	}`)

	g, err := graphload.Parse(path)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, err := Inline(g, Options{}); err == nil {
		t.Fatal("expected cycle detection error")
	}
}
