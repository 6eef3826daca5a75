// Package compiler wires every pipeline stage (manifest load, graph load,
// inline, resolve, linearize, analyze, emit, runtime-emit, toolchain)
// into one Pipeline driven by a CompileContext passed by pointer, a
// direct rendering of spec.md §9's "pass a CompileContext by reference
// through every stage" design note, translated from
// original_source/src/pipeline.rs's Stage/Pipeline/CompilerContext shape
// into the teacher's own sequential-staging idiom
// (internal/build.Builder.Build()).
package compiler

import (
	"github.com/google/uuid"

	"tensorc/internal/analyzer"
	"tensorc/internal/ir"
	"tensorc/internal/manifest"
)

// ProgramUnit carries one program's IR at every stage it has passed
// through, so later stages (runtimegen, toolchain) can look back at
// earlier stages' output without recomputing it.
type ProgramUnit struct {
	ID       string
	Raw      *ir.RawGraph
	Resolved *ir.ResolvedGraph
	Linear   *ir.LinearGraph
	Header   string
	Source   string
}

// CompileContext is threaded by pointer through every Stage. Stages read
// the fields earlier stages populated and write their own.
type CompileContext struct {
	// RunID identifies this compile invocation in log output, so
	// overlapping `tensorc watch` recompiles can be told apart.
	RunID string

	ManifestPath string
	GeneratedDir string
	OutDir       string

	// Options
	EmitTests bool
	RunBinary bool
	CacheDSN  string

	Manifest *manifest.Manifest
	Params   *manifest.ResolvedParameters
	Plan     *analyzer.ProjectPlan

	// Programs mirrors Plan.Programs' order once populated.
	Programs []*ProgramUnit

	RuntimeSource string
	TestSource    string

	// GeneratedFiles maps a file name under GeneratedDir to its contents,
	// populated by the codegen/runtimegen stages and written to disk by
	// the write stage.
	GeneratedFiles map[string]string

	// BinaryPath is set once the toolchain stage links a binary.
	BinaryPath string
}

// NewCompileContext builds a context for one compile invocation of
// manifestPath, emitting generated sources under generatedDir and any
// linked binary under outDir.
func NewCompileContext(manifestPath, generatedDir, outDir string) *CompileContext {
	return &CompileContext{
		RunID:          uuid.NewString(),
		ManifestPath:   manifestPath,
		GeneratedDir:   generatedDir,
		OutDir:         outDir,
		GeneratedFiles: map[string]string{},
	}
}

// programByID finds the unit for id, which every stage after analyze
// relies on being present.
func (c *CompileContext) programByID(id string) *ProgramUnit {
	for _, p := range c.Programs {
		if p.ID == id {
			return p
		}
	}
	return nil
}
