package compiler

import (
	"os"
	"path/filepath"
	"sort"

	"tensorc/internal/toolchain"
)

// InvokeToolchainStage links every generated .c file into a single
// binary via the host C compiler (spec.md §6). Without --test, the
// generated sources have no entry point (test_runner.c is the only file
// defining main) and a bare `compile` run is meant to hand the generated
// C library off to an external host build, so this stage is a no-op
// unless ctx.EmitTests requested the test runner. --run then executes
// the binary this stage produced.
type InvokeToolchainStage struct {
	// ExtraLibs are additional -l flags the driver wants linked in,
	// beyond the default -lm, as supplied by the caller; none are derived
	// from type_mapping.
	ExtraLibs []string
}

func (InvokeToolchainStage) Name() string { return "invoke toolchain" }

func (s InvokeToolchainStage) Run(ctx *CompileContext) error {
	if !ctx.EmitTests {
		return nil
	}

	names := make([]string, 0, len(ctx.GeneratedFiles))
	for name := range ctx.GeneratedFiles {
		if filepath.Ext(name) == ".c" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	sources := make([]string, len(names))
	for i, n := range names {
		sources[i] = filepath.Join(ctx.GeneratedDir, n)
	}

	if err := os.MkdirAll(ctx.OutDir, 0o755); err != nil {
		return err
	}
	binaryPath := filepath.Join(ctx.OutDir, "generated_bin")

	_, err := toolchain.Compile(toolchain.Options{
		Sources:      sources,
		OutputBinary: binaryPath,
		ExtraLibs:    s.ExtraLibs,
	})
	if err != nil {
		return err
	}
	ctx.BinaryPath = binaryPath

	if ctx.RunBinary {
		if _, err := toolchain.Run(binaryPath); err != nil {
			return err
		}
	}
	return nil
}
