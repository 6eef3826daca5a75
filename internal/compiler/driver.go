package compiler

import (
	"log"

	"tensorc/internal/cache"
)

// DriverOptions configures a single end-to-end compile.
type DriverOptions struct {
	ManifestPath string
	GeneratedDir string
	OutDir       string
	EmitTests    bool
	RunBinary    bool
	// ExtraLibs are additional -l flags passed straight through to the
	// toolchain stage. Nothing derives this from ctx.Manifest.TypeMapping
	// yet: today's closed Datatype enum (f32/f64/i32/i64/u32, see
	// internal/types/datatype.go) has no variant that implies a runtime
	// library, so there is no datatype-to-library rule to compute here.
	// A caller that needs extra link libraries must supply them directly.
	ExtraLibs []string
	// CacheDSN selects the build cache store; empty uses cache.DefaultDSN,
	// an in-memory sqlite cache scoped to this process (spec.md §9).
	CacheDSN string
	Logger   *log.Logger
}

// Run builds the standard Pipeline (load → analyze → compile programs →
// emit runtime → emit test runner → write → toolchain) and executes it,
// returning the populated CompileContext for callers that want to
// inspect generated sources or the binary path.
func Run(opts DriverOptions) (*CompileContext, error) {
	ctx := NewCompileContext(opts.ManifestPath, opts.GeneratedDir, opts.OutDir)
	ctx.EmitTests = opts.EmitTests
	ctx.RunBinary = opts.RunBinary
	ctx.CacheDSN = opts.CacheDSN

	c, err := cache.Open(opts.CacheDSN)
	if err != nil {
		return ctx, err
	}
	defer c.Close()

	p := NewPipeline(opts.Logger).
		AddStage(LoadManifestStage{}).
		AddStage(AnalyzeStage{}).
		AddStage(CompileProgramsStage{Cache: c}).
		AddStage(EmitRuntimeStage{}).
		AddStage(EmitTestRunnerStage{}).
		AddStage(WriteGeneratedStage{}).
		AddStage(InvokeToolchainStage{ExtraLibs: opts.ExtraLibs})

	if err := p.Execute(ctx); err != nil {
		return ctx, err
	}
	return ctx, nil
}
