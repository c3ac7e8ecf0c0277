// Package parallel contains the bounded parallel ForEachErr loop plus other concurrency primitives.
package parallel

import "context"

import "golang.org/x/sync/errgroup"

// ForEachErr calls body for every i from 0 to length with at most limit calls running at once.
// The first error, or the cancellation of ctx, stops the remaining iterations and is returned.
func ForEachErr(ctx context.Context, length, limit int, body func(ctx context.Context, i int) error) error {
	if limit <= 0 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := 0; i < length; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return body(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
