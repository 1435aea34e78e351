package concurrent

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// ForEachIndex runs the action function for every index in [0, n) across at
// most workers goroutines. It waits for all goroutines to finish. If action
// returns an error, it returns the first error encountered. A non-positive
// workers value removes the limit.
func ForEachIndex(n, workers int, action func(int) error) error {
	errGroup := errgroup.Group{}
	if workers > 0 {
		errGroup.SetLimit(workers)
	}

	for i := 0; i < n; i++ {
		i := i
		errGroup.Go(func() error {
			return action(i)
		})
	}

	return errGroup.Wait()
}

// ForEach runs the action function for each element of the slice in a
// separate goroutine, bounded by workers. It waits for all goroutines to
// finish and returns the first error encountered.
func ForEach[T any](items []T, workers int, action func(T) error) error {
	errGroup := errgroup.Group{}
	if workers > 0 {
		errGroup.SetLimit(workers)
	}

	for _, item := range items {
		item := item
		errGroup.Go(func() error {
			return action(item)
		})
	}

	return errGroup.Wait()
}

// ForEachMute runs the action function for each element of the slice in a
// separate goroutine without a worker limit. It waits for all goroutines to
// finish and ignores any errors encountered.
func ForEachMute[T any](items []T, action func(T) error) {
	wg := sync.WaitGroup{}

	for _, item := range items {
		wg.Add(1)
		go func(item T) {
			defer wg.Done()
			_ = action(item)
		}(item)
	}

	wg.Wait()
}
