package graphload

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// LoadAll parses every graph file in paths concurrently and returns the
// results in the same order paths were given, regardless of completion
// order. Concurrency here is confined to file ingestion: by the time
// LoadAll returns, every goroutine has joined, so the Graph Loader stage
// still behaves as a single synchronous step to the rest of the pipeline.
func LoadAll(ctx context.Context, paths []string) ([]*Graph, error) {
	graphs := make([]*Graph, len(paths))
	g, _ := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			parsed, err := Parse(p)
			if err != nil {
				return err
			}
			graphs[i] = parsed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return graphs, nil
}
