package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/dtnitsch/studybot/pkg/extractor"
)

// ErrBatchFailed is returned by RunAll when at least one job failed.
var ErrBatchFailed = errors.New("one or more jobs failed")

type Job struct {
	Index  int
	Source extractor.PageSource
}

// JobResult pairs a job with its outcome. Exactly one of Result and Error is
// set.
type JobResult struct {
	Job
	Result *Result
	Error  error
}

// RunAll runs every source through Run with a fixed pool of workers. Results
// come back in source order.
func (p *Pipeline) RunAll(ctx context.Context, sources []extractor.PageSource, opts RunOptions, workers int) ([]JobResult, error) {
	if workers < 1 {
		workers = 1
	}
	workers = min(workers, max(len(sources), 1))

	p.logger.Info("starting generation workers", "sources", len(sources), "workers", workers)
	var wg sync.WaitGroup
	jobs := make(chan Job, len(sources))
	results := make(chan JobResult, len(sources))

	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if err := ctx.Err(); err != nil {
					results <- JobResult{Job: job, Error: err}
					continue
				}
				res, err := p.Run(ctx, job.Source, opts)
				if err != nil {
					p.logger.Error("job failed", "worker", w, "source", describe(job.Source), "error", err)
				}
				results <- JobResult{Job: job, Result: res, Error: err}
			}
		}()
	}

	for i, src := range sources {
		jobs <- Job{Index: i, Source: src}
	}
	close(jobs)

	wg.Wait()
	close(results)

	out := make([]JobResult, len(sources))
	var runErr error
	for r := range results {
		out[r.Index] = r
		if r.Error != nil {
			runErr = ErrBatchFailed
		}
	}
	return out, runErr
}
