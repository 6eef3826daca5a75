// cmd/tensorc/commands/compile.go
package commands

import (
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"tensorc/internal/build"
	"tensorc/internal/compiler"
)

func generatedSize(files map[string]string) uint64 {
	var total uint64
	for _, content := range files {
		total += uint64(len(content))
	}
	return total
}

// CompileCommand implements `tensorc compile <manifest.json> [--test]
// [--run] [--cache-dsn <dsn>] [--out <dir>] [--package <archive.tar.gz>]`
// (spec.md §6).
func CompileCommand(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	test := fs.Bool("test", false, "emit and link the test runner")
	run := fs.Bool("run", false, "execute the linked binary after compiling (implies a binary exists, i.e. --test)")
	cacheDSN := fs.String("cache-dsn", "", "build cache DSN (sqlite:, sqlite://, postgres://, mysql://); default is an in-memory cache")
	out := fs.String("out", "generated", "directory the emitted C sources and binary are written under")
	pkg := fs.String("package", "", "write a checksummed tar.gz of the generated sources to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: tensorc compile <manifest.json> [--test] [--run] [--cache-dsn <dsn>] [--out <dir>]")
	}
	manifestPath := fs.Arg(0)

	ctx, err := compiler.Run(compiler.DriverOptions{
		ManifestPath: manifestPath,
		GeneratedDir: *out,
		OutDir:       *out,
		EmitTests:    *test,
		RunBinary:    *run,
		CacheDSN:     *cacheDSN,
	})
	if err != nil {
		return err
	}

	size := humanize.Bytes(generatedSize(ctx.GeneratedFiles))
	if ctx.BinaryPath != "" {
		fmt.Printf("linked %s (%s of generated C sources)\n", ctx.BinaryPath, size)
	} else {
		fmt.Printf("generated sources written to %s (%s)\n", ctx.GeneratedDir, size)
	}

	if *pkg != "" {
		programIDs := make([]string, 0, len(ctx.Programs))
		for _, p := range ctx.Programs {
			programIDs = append(programIDs, p.ID)
		}
		archivePath := *pkg
		if !filepath.IsAbs(archivePath) {
			archivePath = filepath.Join(*out, archivePath)
		}
		bundle := build.NewBundle(programIDs, ctx.GeneratedFiles)
		if err := bundle.Write(archivePath, time.Now()); err != nil {
			return err
		}
		fmt.Printf("packaged %s\n", archivePath)
	}
	return nil
}
