package pipeline

import (
	"context"
	"errors"
	"sync"
)

// forEach calls fn for every index in [0, n) on at most workers
// goroutines. When failFast is set, the first error cancels the context
// passed to the remaining calls. It returns per-index errors and the
// first error observed, ignoring cancellations it caused itself.
func forEach(parent context.Context, n, workers int, failFast bool, fn func(ctx context.Context, i int) error) ([]error, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	errs := make([]error, n)
	sem := make(chan struct{}, max(workers, 1))
	var wg sync.WaitGroup
	var once sync.Once
	var first error

	for i := 0; i < n; i++ {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			errs[i] = ctx.Err()
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			err := fn(ctx, i)
			errs[i] = err
			if err == nil || (errors.Is(err, context.Canceled) && ctx.Err() != nil) {
				return
			}
			once.Do(func() {
				first = err
				if failFast {
					cancel()
				}
			})
		}(i)
	}
	wg.Wait()

	if first != nil {
		return errs, first
	}
	return errs, parent.Err()
}
