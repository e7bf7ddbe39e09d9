package service

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/educentral-admin-api/internal/importer"
	"github.com/noah-isme/educentral-admin-api/internal/repository"
	"github.com/noah-isme/educentral-admin-api/pkg/jobs"
)

var fixedNow = time.Date(2024, time.August, 14, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func seededStores() *repository.Stores {
	return repository.NewMemoryStores(true)
}

func testIDs() importer.IDGenerator {
	return importer.NewSequenceGenerator(fixedClock)
}

type queueStub struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *queueStub) enqueued() []jobs.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]jobs.Job(nil), q.jobs...)
}

// slowReads delays every lookup so concurrent writers interleave between read and write.
type slowReads[T any] struct {
	collection[T]
}

func (s slowReads[T]) FindByID(ctx context.Context, id string) (*T, error) {
	time.Sleep(5 * time.Millisecond)
	return s.collection.FindByID(ctx, id)
}

// race runs every fn at once and waits for all of them.
func race(fns ...func()) {
	var start, done sync.WaitGroup
	start.Add(1)
	for _, fn := range fns {
		done.Add(1)
		go func(fn func()) {
			defer done.Done()
			start.Wait()
			fn()
		}(fn)
	}
	start.Done()
	done.Wait()
}
