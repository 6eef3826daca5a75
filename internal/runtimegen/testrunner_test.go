package runtimegen

import (
	"strings"
	"testing"

	"tensorc/internal/ir"
	"tensorc/internal/manifest"
	"tensorc/internal/types"
)

func TestEmitTestRunnerExternDeclarationsAndComparison(t *testing.T) {
	shape := types.Shape{types.Concrete(2)}
	lg := singleOutputProgram(t, "in", "out", shape)

	m := &manifest.Manifest{
		Sources: map[string]manifest.SourceDef{"state": {Shape: shape}},
		Tests: []manifest.TestCase{
			{
				Name:     "basic",
				Inputs:   map[string][]float32{"state": {1, 2}},
				Expected: map[string][]float32{"P.out": {1, 2}, "sources.state": {1, 2}},
			},
		},
	}

	source, err := EmitTestRunner(m, map[string]*ir.LinearGraph{"P": lg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"extern float* resource_state;",
		"extern float out_P_out[];",
		"resource_state[0] = 1",
		"resource_state[1] = 2",
		"out_P_out[0]",
		"run_test_basic",
		"int main(void)",
	} {
		if !strings.Contains(source, want) {
			t.Fatalf("missing %q in:\n%s", want, source)
		}
	}
}

func TestExternDeclarationsDeterministicOrder(t *testing.T) {
	shape := types.Shape{types.Concrete(1)}
	lgP := singleOutputProgram(t, "in", "out", shape)
	lgQ := singleOutputProgram(t, "in", "out", shape)

	m := &manifest.Manifest{
		Tests: []manifest.TestCase{
			{
				Name:     "ordering",
				Inputs:   map[string][]float32{"z": {1}, "a": {1}},
				Expected: map[string][]float32{"Q.out": {1}, "P.out": {1}},
			},
		},
	}

	programs := map[string]*ir.LinearGraph{"P": lgP, "Q": lgQ}
	a := externDeclarations(m, programs)
	b := externDeclarations(m, programs)
	if a != b {
		t.Fatalf("externDeclarations is not deterministic:\n%s\n---\n%s", a, b)
	}

	aziIdx := strings.Index(a, "resource_a")
	zIdx := strings.Index(a, "resource_z")
	if aziIdx == -1 || zIdx == -1 || aziIdx > zIdx {
		t.Fatalf("expected resource_a before resource_z, got:\n%s", a)
	}
}
