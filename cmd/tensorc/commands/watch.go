// cmd/tensorc/commands/watch.go
package commands

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"tensorc/internal/compiler"
	"tensorc/internal/devserver"
	"tensorc/internal/graphload"
	"tensorc/internal/manifest"
)

// WatchCommand implements `tensorc watch <manifest.json> [--addr
// host:port] [--out dir] [--poll duration]`: recompiles on every change
// to the manifest or any program graph file it references and
// broadcasts the result to connected websocket clients (SPEC_FULL.md
// §4.15). It is developer tooling around the compiler, not part of the
// core pipeline invariants.
func WatchCommand(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	addr := fs.String("addr", "localhost:8787", "address the devserver websocket listens on")
	out := fs.String("out", "generated", "directory emitted C sources are written under")
	poll := fs.Duration("poll", 500*time.Millisecond, "file modification poll interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: tensorc watch <manifest.json> [--addr host:port] [--out dir] [--poll duration]")
	}
	manifestPath := fs.Arg(0)

	paths, err := watchedFiles(manifestPath)
	if err != nil {
		return err
	}

	srv := devserver.New()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.ServeHTTP)
	httpServer := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		log.Printf("devserver listening on ws://%s/ws", *addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("devserver: %v", err)
		}
	}()

	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		close(stop)
	}()

	recompile := func() error {
		_, err := compiler.Run(compiler.DriverOptions{
			ManifestPath: manifestPath,
			GeneratedDir: *out,
			OutDir:       *out,
		})
		return err
	}

	fmt.Printf("[stage] initial compile\n")
	if err := recompile(); err != nil {
		fmt.Fprintf(os.Stderr, "initial compile failed: %v\n", err)
	}

	srv.Watch(paths, *poll, stop, recompile)
	return httpServer.Close()
}

// watchedFiles returns the manifest path plus every program graph file it
// transitively references through sub-graph imports, matching the
// teacher's Builder.Watch() polling convention over a recursively
// resolved file set.
func watchedFiles(manifestPath string) ([]string, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	paths := []string{manifestPath}
	manifestDir := filepath.Dir(manifestPath)
	seen := map[string]bool{}

	var walk func(path string) error
	walk = func(path string) error {
		if seen[path] {
			return nil
		}
		seen[path] = true
		paths = append(paths, path)

		g, err := graphload.Parse(path)
		if err != nil {
			return err
		}
		for _, n := range g.Nodes {
			if !n.IsSubgraph {
				continue
			}
			childPath, err := graphload.ResolveSubgraphPath(n.SubgraphPath, g.Imports, g.BaseDir, filepath.Join(manifestDir, "lib"))
			if err != nil {
				continue
			}
			if err := walk(childPath); err != nil {
				return err
			}
		}
		return nil
	}

	for _, p := range m.Programs {
		progPath := p.Path
		if !filepath.IsAbs(progPath) {
			progPath = filepath.Join(manifestDir, progPath)
		}
		if err := walk(progPath); err != nil {
			return nil, err
		}
	}

	return paths, nil
}
