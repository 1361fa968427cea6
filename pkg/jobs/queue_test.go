package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueSingleWorkerPreservesOrder(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []int
		done = make(chan struct{})
	)
	q := NewQueue("ordered", func(ctx context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, job.Payload.(int))
		if len(seen) == 5 {
			close(done)
		}
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 8})
	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(Job{Type: "n", Payload: i}))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs not processed")
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, seen)
}

func TestQueueRetriesUntilLimit(t *testing.T) {
	var (
		mu       sync.Mutex
		attempts int
		done     = make(chan struct{})
	)
	q := NewQueue("retry", func(ctx context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 3 {
			close(done)
		}
		return errors.New("fail")
	}, QueueConfig{Workers: 1, MaxRetries: 2, RetryDelay: 10 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{Type: "flaky"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("retries not attempted")
	}
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 3, attempts)
	mu.Unlock()
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("idle", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{}))
}

func TestQueueEnqueueHonoursCallerContext(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("full", func(ctx context.Context, job Job) error {
		<-block
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	require.NoError(t, q.Enqueue(Job{}))
	// The worker may or may not have taken the first job yet; fill until blocked.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = q.EnqueueContext(ctx, Job{})
	}
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueueDrainWaitsForQueuedJobs(t *testing.T) {
	var handled atomic.Int32
	q := NewQueue("drain", func(ctx context.Context, job Job) error {
		time.Sleep(5 * time.Millisecond)
		handled.Add(1)
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 8})
	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 4; i++ {
		require.NoError(t, q.Enqueue(Job{}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Drain(ctx))
	assert.Equal(t, int32(4), handled.Load())
	assert.ErrorIs(t, q.Enqueue(Job{}), ErrNotRunning)
}

func TestQueueDrainHonoursDeadline(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("stuck", func(ctx context.Context, job Job) error {
		<-block
		return nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()
	require.NoError(t, q.Enqueue(Job{}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Drain(ctx), context.DeadlineExceeded)
}

func TestQueueJobTimeoutAndObserver(t *testing.T) {
	outcomes := make(chan Outcome, 1)
	q := NewQueue("bounded", func(ctx context.Context, job Job) error {
		<-ctx.Done()
		return ctx.Err()
	}, QueueConfig{Workers: 1, JobTimeout: 20 * time.Millisecond, Observe: func(o Outcome) { outcomes <- o }})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{Type: "slow"}))

	select {
	case o := <-outcomes:
		assert.ErrorIs(t, o.Err, context.DeadlineExceeded)
		assert.Equal(t, "slow", o.Job.Type)
		assert.NotEmpty(t, o.Job.ID)
		assert.GreaterOrEqual(t, o.Run, 20*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("observer not called")
	}
}
