package resolve

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/nathoo/worldnav/types"
)

// DescribeAll resolves many points concurrently. Results keep input order.
// limit bounds the number of concurrent workers; zero or less means one per
// point.
func DescribeAll(ctx context.Context, r *Resolver, points []types.Point, limit int) ([]string, error) {
	out := make([]string, len(points))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, p := range points {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = r.Describe(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
