package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// mockResult implements Result
type mockResult struct {
	err error
}

func (r *mockResult) Err() error {
	return r.err
}

// mockJob implements Job
type mockJob struct {
	duration  time.Duration
	shouldErr bool
	executed  *int32 // atomic counter
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{err: errors.New("job error")}
	}
	return &mockResult{err: nil}
}

func TestNewPool(t *testing.T) {
	p1 := NewPool(5)
	if p1.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p1.workers)
	}

	p2 := NewPool(0)
	if p2.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p2.workers)
	}

	p3 := NewPool(-1)
	if p3.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p3.workers)
	}
}

func TestPool_SubmitAndWait(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	var executed int32
	count := 6

	for i := 0; i < count; i++ {
		pool.Submit(&mockJob{executed: &executed})
	}

	results := pool.Wait()

	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}
	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

func TestPool_RunLargerThanBuffers(t *testing.T) {
	// 100 jobs through a 2-worker pool: far more than the channel buffers.
	var executed int32
	jobs := make([]Job, 100)
	for i := range jobs {
		jobs[i] = &mockJob{executed: &executed}
	}

	results := NewPool(2).Run(context.Background(), jobs)

	if len(results) != len(jobs) {
		t.Errorf("expected %d results, got %d", len(jobs), len(results))
	}
	if atomic.LoadInt32(&executed) != int32(len(jobs)) {
		t.Errorf("expected %d executed jobs, got %d", len(jobs), executed)
	}
}

func TestPool_RunCollectsErrors(t *testing.T) {
	jobs := []Job{
		&mockJob{},
		&mockJob{shouldErr: true},
		&mockJob{},
	}

	results := NewPool(3).Run(context.Background(), jobs)

	var failed int
	for _, r := range results {
		if r.Err() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("expected exactly 1 failed result, got %d", failed)
	}
}

func TestPool_RunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := make([]Job, 50)
	for i := range jobs {
		jobs[i] = &mockJob{duration: 10 * time.Millisecond}
	}

	done := make(chan []Result, 1)
	go func() {
		done <- NewPool(2).Run(ctx, jobs)
	}()

	select {
	case results := <-done:
		if len(results) == len(jobs) {
			t.Log("all jobs finished before cancellation took effect")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	var executed int32
	for i := 0; i < 4; i++ {
		pool.Submit(&mockJob{duration: 50 * time.Millisecond, executed: &executed})
	}

	pool.Shutdown()

	// Submissions after shutdown are dropped, not queued.
	pool.Submit(&mockJob{executed: &executed})
	if atomic.LoadInt32(&executed) > 4 {
		t.Error("job submitted after Shutdown was executed")
	}
}
