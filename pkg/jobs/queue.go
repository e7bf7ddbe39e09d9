package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotStarted is returned when a job is enqueued before Start.
	ErrNotStarted = errors.New("queue not started")
	// ErrStopped is returned once the queue has been stopped or its context cancelled.
	ErrStopped = errors.New("queue stopped")
)

// Outcome labels the result of a single handler attempt.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeRetried   Outcome = "retried"
	OutcomeDropped   Outcome = "dropped"
)

// Job is a unit of background work. Payload is handed to the handler untouched.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job. A non-nil error schedules a retry until MaxRetries is exhausted.
type Handler func(ctx context.Context, job Job) error

// ResultFunc observes every handler attempt.
type ResultFunc func(queue string, job Job, outcome Outcome)

// QueueConfig tunes a Queue. Zero values fall back to defaults.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	OnResult   ResultFunc
	Logger     *zap.Logger
}

// Queue runs jobs on a fixed pool of goroutines with linear retry backoff.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	log     *zap.Logger

	jobs     chan Job
	inflight int64

	mu      sync.RWMutex
	ctx     context.Context
	stop    context.CancelFunc
	workers sync.WaitGroup
}

// NewQueue builds a queue; call Start before enqueueing.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		log:     log.With(zap.String("queue", name)),
		jobs:    make(chan Job, cfg.BufferSize),
	}
}

// Name returns the queue name.
func (q *Queue) Name() string { return q.name }

// Pending reports buffered jobs plus jobs waiting on a retry timer.
func (q *Queue) Pending() int {
	return len(q.jobs) + int(atomic.LoadInt64(&q.inflight))
}

// Start launches the worker pool. Calling it twice is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ctx != nil {
		return
	}
	q.ctx, q.stop = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.workers.Add(1)
		go q.loop(q.ctx)
	}
	q.log.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop cancels the workers and waits for the running handlers to return.
func (q *Queue) Stop() {
	q.mu.RLock()
	stop := q.stop
	q.mu.RUnlock()
	if stop == nil {
		return
	}
	stop()
	q.workers.Wait()
	q.log.Info("queue stopped", zap.Int("abandoned", q.Pending()))
}

// Enqueue hands a job to the pool, blocking while the buffer is full.
func (q *Queue) Enqueue(job Job) error {
	q.mu.RLock()
	ctx := q.ctx
	q.mu.RUnlock()
	if ctx == nil {
		return fmt.Errorf("%s: %w", q.name, ErrNotStarted)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w: %v", q.name, ErrStopped, err)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now()
	}
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w: %v", q.name, ErrStopped, ctx.Err())
	}
}

func (q *Queue) loop(ctx context.Context) {
	defer q.workers.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.jobs:
			q.dispatch(ctx, job)
		}
	}
}

func (q *Queue) dispatch(ctx context.Context, job Job) {
	err := q.invoke(ctx, job)
	if err == nil {
		q.report(job, OutcomeSucceeded)
		return
	}

	fields := []zap.Field{zap.String("job_id", job.ID), zap.String("job_type", job.Type), zap.Int("attempt", job.Attempt), zap.Error(err)}
	if job.Attempt >= q.cfg.MaxRetries {
		q.log.Error("job dropped after retries", fields...)
		q.report(job, OutcomeDropped)
		return
	}
	q.log.Warn("job failed, retrying", fields...)
	q.report(job, OutcomeRetried)

	job.Attempt++
	delay := q.cfg.RetryDelay * time.Duration(job.Attempt)
	atomic.AddInt64(&q.inflight, 1)
	time.AfterFunc(delay, func() {
		defer atomic.AddInt64(&q.inflight, -1)
		if err := q.Enqueue(job); err != nil {
			q.log.Warn("retry not enqueued", zap.String("job_id", job.ID), zap.Error(err))
		}
	})
}

func (q *Queue) invoke(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return q.handler(ctx, job)
}

func (q *Queue) report(job Job, outcome Outcome) {
	if q.cfg.OnResult != nil {
		q.cfg.OnResult(q.name, job, outcome)
	}
}
