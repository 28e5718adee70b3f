package service

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/debtscan/debtscan/domain"
)

// ParallelExecutorImpl runs a batch of ExecutableTask concurrently, bounded
// by jobs. jobs<=0 resolves to runtime.NumCPU() (the "auto" config value);
// jobs==1 yields deterministic single-threaded execution (§5).
type ParallelExecutorImpl struct {
	jobs int
}

// NewParallelExecutor builds a domain.ParallelExecutor honoring the
// resolved job count.
func NewParallelExecutor(jobs int) domain.ParallelExecutor {
	return &ParallelExecutorImpl{jobs: jobs}
}

// Execute runs every task, collecting each into a TaskResult regardless of
// failure — a failing task never aborts its siblings, consistent with the
// core's accumulating-diagnostics error policy (§4.10, §7).
func (pe *ParallelExecutorImpl) Execute(ctx context.Context, tasks []domain.ExecutableTask) []domain.TaskResult {
	results := make([]domain.TaskResult, len(tasks))

	limit := pe.jobs
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			value, err := task.Execute(gctx)
			results[i] = domain.TaskResult{Name: task.Name(), Value: value, Err: err}
			return nil // never short-circuit siblings on a task error
		})
	}
	_ = g.Wait()

	return results
}
