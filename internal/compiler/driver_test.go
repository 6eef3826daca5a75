package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeProject lays out a minimal one-program manifest + graph on disk:
// two input resources summed elementwise into an output resource.
func writeProject(t *testing.T) (manifestPath, generatedDir, outDir string) {
	t.Helper()
	dir := t.TempDir()

	graph := `{
		"inputs": [{"name": "in1"}, {"name": "in2"}],
		"outputs": [{"name": "out"}],
		"nodes": [{"id": "sum", "op": "Add"}],
		"links": [
			["inputs.in1", "sum.a"],
			["inputs.in2", "sum.b"],
			["sum.out", "outputs.out"]
		]
	}`
	if err := os.WriteFile(filepath.Join(dir, "p.json"), []byte(graph), 0o644); err != nil {
		t.Fatalf("write graph: %v", err)
	}

	manifest := `{
		"sources": {
			"a": {"shape": [2]},
			"b": {"shape": [2]},
			"result": {"shape": [2]}
		},
		"programs": [{"id": "P", "path": "p.json"}],
		"links": [
			["sources.a", "P.in1"],
			["sources.b", "P.in2"],
			["P.out", "sources.result"]
		],
		"tests": [
			{
				"name": "sums",
				"inputs": {"a": [1, 2], "b": [3, 4]},
				"expected": {"P.out": [4, 6]}
			}
		]
	}`
	manifestPath = filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	generatedDir = filepath.Join(dir, "generated")
	outDir = filepath.Join(dir, "out")
	return manifestPath, generatedDir, outDir
}

// runUpToWrite executes every stage through WriteGeneratedStage, skipping
// InvokeToolchainStage so the test has no dependency on a host C compiler
// being installed.
func runUpToWrite(t *testing.T, manifestPath, generatedDir, outDir string, emitTests bool) *CompileContext {
	t.Helper()
	ctx := NewCompileContext(manifestPath, generatedDir, outDir)
	ctx.EmitTests = emitTests

	p := NewPipeline(nil).
		AddStage(LoadManifestStage{}).
		AddStage(AnalyzeStage{}).
		AddStage(CompileProgramsStage{}).
		AddStage(EmitRuntimeStage{}).
		AddStage(EmitTestRunnerStage{}).
		AddStage(WriteGeneratedStage{})

	if err := p.Execute(ctx); err != nil {
		t.Fatalf("pipeline execute: %v", err)
	}
	return ctx
}

func TestDriverCompilesSingleProgramElementwisePipeline(t *testing.T) {
	manifestPath, generatedDir, outDir := writeProject(t)
	ctx := runUpToWrite(t, manifestPath, generatedDir, outDir, true)

	unit := ctx.programByID("P")
	if unit == nil {
		t.Fatalf("expected program P in context")
	}
	if !strings.Contains(unit.Source, "+") {
		t.Fatalf("expected emitted source to contain an addition kernel:\n%s", unit.Source)
	}

	if !strings.Contains(ctx.RuntimeSource, "void execute_all(void)") {
		t.Fatalf("missing execute_all in runtime source:\n%s", ctx.RuntimeSource)
	}
	if !strings.Contains(ctx.RuntimeSource, "resource_result[i] = out_P_out[i];") {
		t.Fatalf("expected feedback copy-back from P.out to sources.result:\n%s", ctx.RuntimeSource)
	}

	if !strings.Contains(ctx.TestSource, "run_test_sums") {
		t.Fatalf("missing test case function:\n%s", ctx.TestSource)
	}

	for _, name := range []string{"P.h", "P.c", "runtime.c", "test_runner.c"} {
		path := filepath.Join(generatedDir, name)
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected generated file %s: %v", path, err)
		}
	}
}

func TestRunEndToEndWithoutToolchain(t *testing.T) {
	manifestPath, generatedDir, outDir := writeProject(t)

	ctx, err := Run(DriverOptions{
		ManifestPath: manifestPath,
		GeneratedDir: generatedDir,
		OutDir:       outDir,
		EmitTests:    false,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ctx.BinaryPath != "" {
		t.Fatalf("expected no binary without --test, got %q", ctx.BinaryPath)
	}
	if _, err := os.Stat(filepath.Join(generatedDir, "P.c")); err != nil {
		t.Fatalf("expected P.c on disk: %v", err)
	}
}

func TestDriverWithoutTestsSkipsTestRunner(t *testing.T) {
	manifestPath, generatedDir, outDir := writeProject(t)
	ctx := runUpToWrite(t, manifestPath, generatedDir, outDir, false)

	if ctx.TestSource != "" {
		t.Fatalf("expected no test source when EmitTests is false")
	}
	if _, err := os.Stat(filepath.Join(generatedDir, "test_runner.c")); err == nil {
		t.Fatalf("did not expect test_runner.c to be written")
	}
}
