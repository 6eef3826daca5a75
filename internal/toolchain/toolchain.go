// Package toolchain wraps invocation of the host C compiler as an opaque
// external process (spec.md §6). The compiler never parses or links C
// itself; it shells out to gcc and reports back.
package toolchain

import (
	"os/exec"
	"path/filepath"
	"strings"

	cerrors "tensorc/internal/errors"
)

// Options configures a single compile invocation.
type Options struct {
	// Sources are the .c files to compile, in the order they should be
	// passed on the command line.
	Sources []string
	// OutputBinary is the path gcc should write the linked binary to.
	OutputBinary string
	// ExtraLibs are additional -l flags beyond the default -lm, as given
	// by the caller.
	ExtraLibs []string
	// Compiler overrides the compiler binary name. Defaults to "gcc".
	Compiler string
}

// Result captures a successful compile's diagnostics, even though none are
// expected on the happy path.
type Result struct {
	Args   []string
	Output string
}

// Compile builds the gcc argument vector from opts, runs it, and on
// non-zero exit wraps the captured combined stdout/stderr into a
// ToolchainFailure CompileError.
func Compile(opts Options) (*Result, error) {
	if len(opts.Sources) == 0 {
		return nil, cerrors.New(cerrors.ToolchainFailure, "", "no sources supplied to compile")
	}
	if opts.OutputBinary == "" {
		return nil, cerrors.New(cerrors.ToolchainFailure, "", "no output binary path supplied")
	}

	compiler := opts.Compiler
	if compiler == "" {
		compiler = "gcc"
	}

	args := []string{"-O3", "-fopenmp"}
	args = append(args, opts.Sources...)
	args = append(args, "-o", opts.OutputBinary)
	for _, lib := range opts.ExtraLibs {
		args = append(args, "-l"+strings.TrimPrefix(lib, "-l"))
	}
	args = append(args, "-lm")

	cmd := exec.Command(compiler, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		subject := filepath.Base(opts.OutputBinary)
		return nil, cerrors.New(cerrors.ToolchainFailure, subject, "%s %s: %v", compiler, strings.Join(args, " "), err).
			WithDetail(strings.Split(strings.TrimRight(string(out), "\n"), "\n")...)
	}

	return &Result{Args: args, Output: string(out)}, nil
}

// Run executes a previously linked binary and returns its combined
// stdout/stderr, again wrapping a non-zero exit into a ToolchainFailure.
func Run(binary string, args ...string) (string, error) {
	cmd := exec.Command(binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), cerrors.New(cerrors.ToolchainFailure, filepath.Base(binary), "execution failed: %v", err).
			WithDetail(strings.Split(strings.TrimRight(string(out), "\n"), "\n")...)
	}
	return string(out), nil
}
