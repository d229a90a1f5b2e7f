// Package renderqueue holds barcode label renders that failed so they can be
// retried later. The queue is drained synchronously by an admin endpoint;
// there are no background workers.
package renderqueue

import (
	"sync"
	"time"
)

type RenderJob struct {
	Gift         string
	BarcodeValue string
	RetryAt      time.Time
	RetryCount   int
	MaxRetries   int
}

type Queue struct {
	items []*RenderJob
	mu    sync.Mutex
}

func NewQueue() *Queue {
	return &Queue{
		items: make([]*RenderJob, 0),
	}
}

func (q *Queue) Enqueue(job *RenderJob) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, job)
}

// Dequeue removes and returns the first job whose RetryAt has passed, or nil.
func (q *Queue) Dequeue() *RenderJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	for i, job := range q.items {
		if job.RetryAt.Before(now) || job.RetryAt.Equal(now) {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return job
		}
	}
	return nil
}

func (q *Queue) Peek() *RenderJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	for _, job := range q.items {
		if job.RetryAt.Before(now) || job.RetryAt.Equal(now) {
			return job
		}
	}
	return nil
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) GetAll() []*RenderJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	result := make([]*RenderJob, len(q.items))
	copy(result, q.items)
	return result
}
