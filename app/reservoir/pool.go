package reservoir

import (
	"context"
	"sync"

	"github.com/lysyi3m/signal-comb/app/provider"
)

// fetchJob is one provider fetch with its failure handling already absorbed;
// it yields an empty batch instead of an error.
type fetchJob func(ctx context.Context) []provider.DiscoveryItem

// runJobs executes jobs with at most concurrency in flight. Each job's
// result lands at the job's original index, so callers can map batches back
// to providers regardless of completion order.
func runJobs(ctx context.Context, jobs []fetchJob, concurrency int) [][]provider.DiscoveryItem {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([][]provider.DiscoveryItem, len(jobs))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job fetchJob) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = job(ctx)
		}(i, job)
	}

	wg.Wait()
	return results
}
