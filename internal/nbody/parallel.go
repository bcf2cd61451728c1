package nbody

import "golang.org/x/sync/errgroup"

// ParallelFor splits [0, n) into at most workers contiguous chunks and runs
// fn on each concurrently, returning when all chunks are done. With
// workers <= 1 it calls fn(0, n) on the calling goroutine.
func ParallelFor(n, workers int, fn func(start, end int)) {
	if workers <= 1 || n < 2 {
		fn(0, n)
		return
	}
	if workers > n {
		workers = n
	}

	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	// fn cannot fail, so Wait only joins.
	_ = g.Wait()
}
