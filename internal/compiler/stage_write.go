package compiler

import (
	"os"
	"path/filepath"
	"sort"

	cerrors "tensorc/internal/errors"
)

// WriteGeneratedStage flushes every buffer in ctx.GeneratedFiles to disk
// under ctx.GeneratedDir (spec.md §6's "Filesystem layout produced").
type WriteGeneratedStage struct{}

func (WriteGeneratedStage) Name() string { return "write generated sources" }

func (WriteGeneratedStage) Run(ctx *CompileContext) error {
	if err := os.MkdirAll(ctx.GeneratedDir, 0o755); err != nil {
		return cerrors.New(cerrors.IoError, ctx.GeneratedDir, "failed to create generated directory: %v", err)
	}

	names := make([]string, 0, len(ctx.GeneratedFiles))
	for name := range ctx.GeneratedFiles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(ctx.GeneratedDir, name)
		if err := os.WriteFile(path, []byte(ctx.GeneratedFiles[name]), 0o644); err != nil {
			return cerrors.New(cerrors.IoError, path, "failed to write generated file: %v", err)
		}
	}
	return nil
}
