package crawler

import (
	"context"
	"sync"
)

// runIndexed executes fn for every index in [0, n) across at most
// `concurrency` workers and waits for all of them. Each index owns its own
// result slot, so worker failures stay isolated.
func runIndexed(ctx context.Context, concurrency, n int, fn func(ctx context.Context, i int)) {
	if n <= 0 {
		return
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > n {
		concurrency = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				fn(ctx, i)
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
}
