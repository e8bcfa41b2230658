// Package workpool runs a function over a slice with a bounded number of
// invocations in flight and returns results in input order.
//
// Two scheduling modes are available. Chunked runs the items in consecutive
// chunks of Limit and waits for a whole chunk before starting the next, so a
// slow item holds back its chunk. Sliding starts the next item as soon as any
// slot frees up. Both keep at most Limit invocations in flight.
package workpool

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultLimit is the permit count used when Options.Limit is not positive.
const DefaultLimit = 8

// Mode selects the scheduling strategy.
type Mode int

const (
	// Chunked processes items in chunks of Limit with a barrier between chunks.
	Chunked Mode = iota

	// Sliding keeps up to Limit invocations in flight at all times.
	Sliding
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case Chunked:
		return "chunked"
	case Sliding:
		return "sliding"
	default:
		return "unknown"
	}
}

// Options configures a Map or MapSettled call.
type Options struct {
	// Limit is the maximum number of concurrent invocations.
	Limit int

	// Mode is the scheduling strategy (default Chunked).
	Mode Mode

	// OnProgress is called once per finished invocation with the running
	// completed count. Calls are serialized and completed is monotonic.
	OnProgress func(completed, total int)
}

// Outcome is the result of one invocation in MapSettled.
type Outcome[R any] struct {
	Value R
	Err   error
}

// Map applies fn to every item. The first error cancels the context passed
// to the remaining invocations and is returned; results are then nil.
func Map[T, R any](ctx context.Context, items []T, opts Options, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	outcomes, err := run(ctx, items, opts, true, fn)
	if err != nil {
		return nil, err
	}
	results := make([]R, len(outcomes))
	for i, o := range outcomes {
		results[i] = o.Value
	}
	return results, nil
}

// MapSettled applies fn to every item and records each error next to its
// item instead of stopping. Items not yet started when ctx ends are recorded
// with ctx.Err().
func MapSettled[T, R any](ctx context.Context, items []T, opts Options, fn func(ctx context.Context, item T) (R, error)) []Outcome[R] {
	outcomes, _ := run(ctx, items, opts, false, fn)
	return outcomes
}

func run[T, R any](ctx context.Context, items []T, opts Options, failFast bool, fn func(ctx context.Context, item T) (R, error)) ([]Outcome[R], error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	total := len(items)
	outcomes := make([]Outcome[R], total)
	if total == 0 {
		return outcomes, nil
	}

	var mu sync.Mutex
	completed := 0
	done := func() {
		if opts.OnProgress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		completed++
		opts.OnProgress(completed, total)
	}

	// spawn schedules item i on g; results land in distinct indexes.
	spawn := func(g *errgroup.Group, gctx context.Context, i int) {
		g.Go(func() error {
			defer done()
			if err := gctx.Err(); err != nil {
				outcomes[i].Err = err
				if failFast {
					return err
				}
				return nil
			}
			value, err := fn(gctx, items[i])
			outcomes[i] = Outcome[R]{Value: value, Err: err}
			if failFast {
				return err
			}
			return nil
		})
	}

	group := func() (*errgroup.Group, context.Context) {
		if failFast {
			return errgroup.WithContext(ctx)
		}
		return &errgroup.Group{}, ctx
	}

	if opts.Mode == Sliding {
		g, gctx := group()
		g.SetLimit(limit)
		for i := range items {
			spawn(g, gctx, i)
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return outcomes, nil
	}

	for start := 0; start < total; start += limit {
		end := start + limit
		if end > total {
			end = total
		}
		g, gctx := group()
		for i := start; i < end; i++ {
			spawn(g, gctx, i)
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return outcomes, nil
}
