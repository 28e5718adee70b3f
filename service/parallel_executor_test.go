package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debtscan/debtscan/domain"
)

type fakeTask struct {
	name string
	fn   func(ctx context.Context) (interface{}, error)
}

func (f *fakeTask) Name() string { return f.name }
func (f *fakeTask) Execute(ctx context.Context) (interface{}, error) {
	return f.fn(ctx)
}

func TestParallelExecutorRunsEveryTask(t *testing.T) {
	tasks := []domain.ExecutableTask{
		&fakeTask{name: "a", fn: func(ctx context.Context) (interface{}, error) { return 1, nil }},
		&fakeTask{name: "b", fn: func(ctx context.Context) (interface{}, error) { return 2, nil }},
	}
	results := NewParallelExecutor(2).Execute(context.Background(), tasks)
	require.Len(t, results, 2)
	byName := map[string]domain.TaskResult{}
	for _, r := range results {
		byName[r.Name] = r
	}
	assert.Equal(t, 1, byName["a"].Value)
	assert.Equal(t, 2, byName["b"].Value)
}

func TestParallelExecutorFailingTaskDoesNotAbortSiblings(t *testing.T) {
	tasks := []domain.ExecutableTask{
		&fakeTask{name: "fails", fn: func(ctx context.Context) (interface{}, error) { return nil, errors.New("boom") }},
		&fakeTask{name: "succeeds", fn: func(ctx context.Context) (interface{}, error) { return "ok", nil }},
	}
	results := NewParallelExecutor(1).Execute(context.Background(), tasks)
	byName := map[string]domain.TaskResult{}
	for _, r := range results {
		byName[r.Name] = r
	}
	assert.Error(t, byName["fails"].Err)
	assert.NoError(t, byName["succeeds"].Err)
	assert.Equal(t, "ok", byName["succeeds"].Value)
}

func TestParallelExecutorJobsOneRunsSequentially(t *testing.T) {
	var concurrent int32
	var maxSeen int32
	tasks := make([]domain.ExecutableTask, 5)
	for i := range tasks {
		tasks[i] = &fakeTask{name: "t", fn: func(ctx context.Context) (interface{}, error) {
			n := atomic.AddInt32(&concurrent, 1)
			if n > atomic.LoadInt32(&maxSeen) {
				atomic.StoreInt32(&maxSeen, n)
			}
			atomic.AddInt32(&concurrent, -1)
			return nil, nil
		}}
	}
	NewParallelExecutor(1).Execute(context.Background(), tasks)
	assert.LessOrEqual(t, atomic.LoadInt32(&maxSeen), int32(1))
}

func TestParallelExecutorZeroJobsFallsBackToNumCPU(t *testing.T) {
	tasks := []domain.ExecutableTask{
		&fakeTask{name: "a", fn: func(ctx context.Context) (interface{}, error) { return nil, nil }},
	}
	results := NewParallelExecutor(0).Execute(context.Background(), tasks)
	assert.Len(t, results, 1)
}
