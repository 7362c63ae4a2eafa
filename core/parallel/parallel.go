// Package parallel maps a pure task function over positional task indices
// with a bounded number of workers.
package parallel

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// AllWorkers is the n_jobs value that selects one worker per CPU.
const AllWorkers = -1

// Workers resolves an n_jobs setting into a worker count for items tasks.
// 1 (or 0) means sequential, -1 means runtime.NumCPU(), and any other
// negative value -k means NumCPU()+1-k workers, following the scikit-learn
// convention. The result never exceeds items.
func Workers(nJobs, items int) int {
	n := nJobs
	switch {
	case nJobs == 0:
		n = 1
	case nJobs < 0:
		n = runtime.NumCPU() + 1 + nJobs
	}
	if n < 1 {
		n = 1
	}
	if items > 0 && n > items {
		n = items
	}
	return n
}

// Options configures Map.
type Options struct {
	// NJobs is the requested degree of parallelism (see Workers).
	NJobs int

	// Progress, when non-nil, is notified as tasks complete.
	Progress Progress

	// Name labels the operation in panic errors.
	Name string
}

// Map runs fn for every index in [0, n) and returns the results in index
// order, independent of completion order. The first error cancels the
// context passed to the remaining tasks and is returned; no partial result
// is returned alongside it. A panic inside fn is converted to an error.
func Map[T any](ctx context.Context, n int, opts Options, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	results := make([]T, n)
	if n == 0 {
		return results, nil
	}

	name := opts.Name
	if name == "" {
		name = "parallel.Map"
	}

	var done atomic.Int64
	if opts.Progress != nil {
		opts.Progress.Start(n)
	}
	run := func(ctx context.Context, i int) (err error) {
		defer errors.Recover(&err, name)
		v, err := fn(ctx, i)
		if err != nil {
			return err
		}
		results[i] = v
		if opts.Progress != nil {
			opts.Progress.Advance(int(done.Add(1)), n)
		}
		return nil
	}

	workers := Workers(opts.NJobs, n)
	if workers == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := run(ctx, i); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := 0; i < n; i++ {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return run(gctx, i)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	if opts.Progress != nil {
		opts.Progress.Finish()
	}
	return results, nil
}
