package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Sweep runs one bench per variant concurrently, at most limit at a time,
// and returns the results in variant order. Each build call must return a
// bench that shares no state with the others.
func Sweep(ctx context.Context, variants, limit int, cfg Config, build func(i int) (*Bench, error)) ([]*Result, error) {
	results := make([]*Result, variants)

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < variants; i++ {
		g.Go(func() error {
			b, err := build(i)
			if err != nil {
				return err
			}
			results[i], err = b.Run(ctx, cfg)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
