package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

type countJob struct {
	n   *atomic.Int64
	err error
}

type countResult struct {
	err error
}

func (r *countResult) GetError() error { return r.err }

func (j *countJob) Execute(_ context.Context) Result {
	j.n.Add(1)
	return &countResult{err: j.err}
}

func TestPoolRunsAllJobs(t *testing.T) {
	const jobs = 50
	var executed atomic.Int64

	pool := NewSizedPool(4, jobs)
	pool.Start()
	defer pool.Shutdown()

	for i := 0; i < jobs; i++ {
		pool.Submit(&countJob{n: &executed})
	}

	results := pool.Wait()
	if len(results) != jobs {
		t.Errorf("len(results) = %d, want %d", len(results), jobs)
	}
	if got := executed.Load(); got != jobs {
		t.Errorf("executed = %d, want %d", got, jobs)
	}
}

func TestPoolCollectsErrors(t *testing.T) {
	var executed atomic.Int64
	wantErr := errors.New("row failed")

	pool := NewSizedPool(2, 3)
	pool.Start()
	defer pool.Shutdown()

	pool.Submit(&countJob{n: &executed})
	pool.Submit(&countJob{n: &executed, err: wantErr})
	pool.Submit(&countJob{n: &executed})

	failures := 0
	for _, r := range pool.Wait() {
		if r.GetError() != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}
}

func TestPoolMinimumWorkers(t *testing.T) {
	var executed atomic.Int64

	pool := NewPool(0) // clamps to 1 worker
	pool.Start()
	defer pool.Shutdown()

	pool.Submit(&countJob{n: &executed})
	if results := pool.Wait(); len(results) != 1 {
		t.Errorf("len(results) = %d, want 1", len(results))
	}
}

func TestPoolShutdownDropsLateSubmits(t *testing.T) {
	var executed atomic.Int64

	pool := NewSizedPool(2, 4)
	pool.Start()
	pool.Shutdown()

	// Must not panic or block.
	pool.Submit(&countJob{n: &executed})
	if got := executed.Load(); got != 0 {
		t.Errorf("executed = %d after shutdown, want 0", got)
	}
}
