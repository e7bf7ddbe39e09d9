package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	err := q.Enqueue(Job{ID: "1"})
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestQueueEnqueueAfterStop(t *testing.T) {
	q := NewQueue("exports", func(context.Context, Job) error { return nil }, QueueConfig{BufferSize: 1})
	q.Start(context.Background())
	q.Stop()

	assert.ErrorIs(t, q.Enqueue(Job{ID: "2"}), ErrStopped)
}

func TestQueueReportsDroppedJobs(t *testing.T) {
	outcomes := make(chan Outcome, 8)
	q := NewQueue("messages", func(context.Context, Job) error {
		return errors.New("smtp down")
	}, QueueConfig{
		MaxRetries: 1,
		RetryDelay: 5 * time.Millisecond,
		OnResult: func(queue string, job Job, outcome Outcome) {
			assert.Equal(t, "messages", queue)
			outcomes <- outcome
		},
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "MSG1"}))

	var seen []Outcome
	for len(seen) < 2 {
		select {
		case o := <-outcomes:
			seen = append(seen, o)
		case <-time.After(2 * time.Second):
			t.Fatalf("outcomes so far: %v", seen)
		}
	}
	assert.Equal(t, []Outcome{OutcomeRetried, OutcomeDropped}, seen)
}

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan string, 1)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		done <- job.ID
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "exp-1", Type: "export"}))

	select {
	case id := <-done:
		assert.Equal(t, "exp-1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("job not processed")
	}
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var calls int32
	done := make(chan int, 1)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			return errors.New("transient")
		}
		done <- job.Attempt
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: 10 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "msg-1"}))

	select {
	case attempt := <-done:
		assert.Equal(t, 2, attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("job not retried")
	}
}

func TestQueueRecoversPanics(t *testing.T) {
	var calls int32
	done := make(chan struct{}, 1)
	q := NewQueue("test", func(context.Context, Job) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("boom")
		}
		done <- struct{}{}
		return nil
	}, QueueConfig{RetryDelay: 10 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "p"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("panicking job was not retried")
	}
}
