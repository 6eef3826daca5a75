package compiler

import (
	"tensorc/internal/ir"
	"tensorc/internal/runtimegen"
)

// EmitRuntimeStage renders runtime.c, tying every program's argument
// buffers, workspace arrays, and execute_all()/feedback logic together
// (spec.md §4.9).
type EmitRuntimeStage struct{}

func (EmitRuntimeStage) Name() string { return "emit runtime" }

func (EmitRuntimeStage) Run(ctx *CompileContext) error {
	programs := make([]runtimegen.Program, 0, len(ctx.Programs))
	for _, p := range ctx.Programs {
		programs = append(programs, runtimegen.Program{ID: p.ID, Linear: p.Linear})
	}

	source, err := runtimegen.EmitRuntime(ctx.Manifest, ctx.Plan, programs, ctx.Params)
	if err != nil {
		return err
	}
	ctx.RuntimeSource = source
	ctx.GeneratedFiles["runtime.c"] = source
	return nil
}

// EmitTestRunnerStage renders test_runner.c, only run when --test is
// requested (spec.md §6).
type EmitTestRunnerStage struct{}

func (EmitTestRunnerStage) Name() string { return "emit test runner" }

func (EmitTestRunnerStage) Run(ctx *CompileContext) error {
	if !ctx.EmitTests {
		return nil
	}

	programs := make(map[string]*ir.LinearGraph, len(ctx.Programs))
	for _, p := range ctx.Programs {
		programs[p.ID] = p.Linear
	}

	source, err := runtimegen.EmitTestRunner(ctx.Manifest, programs)
	if err != nil {
		return err
	}
	ctx.TestSource = source
	ctx.GeneratedFiles["test_runner.c"] = source
	return nil
}
