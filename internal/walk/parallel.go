package walk

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DetectAll runs DetectCycle for every start, at most workers at a time,
// and returns the cycles in the order of starts. The first detection error
// cancels the remaining work.
func DetectAll(ctx context.Context, g *Graph, starts []State, workers int) ([]Cycle, error) {
	if workers < 1 {
		workers = 1
	}

	cycles := make([]Cycle, len(starts))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, start := range starts {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			c, err := DetectCycle(g, start)
			if err != nil {
				return err
			}

			cycles[i] = c

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return cycles, nil
}
