// internal/browser/promise/queue.go
package promise

import "sync"

// Job is a unit of deferred work, such as a reaction to a settled promise.
type Job func()

// JobQueue receives jobs from the engine. Implementations run them later, in FIFO
// order, on the thread that owns the promises.
type JobQueue interface {
	Enqueue(job Job)
}

// FIFOQueue is an in-memory JobQueue drained explicitly by its owner. Enqueue may be
// called from any goroutine; Drain and RunNext must be called from one.
type FIFOQueue struct {
	mu   sync.Mutex
	jobs []Job
}

// NewFIFOQueue creates an empty queue.
func NewFIFOQueue() *FIFOQueue {
	return &FIFOQueue{}
}

// Enqueue appends job.
func (q *FIFOQueue) Enqueue(job Job) {
	if job == nil {
		return
	}
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
}

// Len returns the number of pending jobs.
func (q *FIFOQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// RunNext runs the oldest job and reports whether there was one.
func (q *FIFOQueue) RunNext() bool {
	q.mu.Lock()
	if len(q.jobs) == 0 {
		q.mu.Unlock()
		return false
	}
	job := q.jobs[0]
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	q.mu.Unlock()

	job()
	return true
}

// Drain runs jobs until the queue is empty, including jobs enqueued by the jobs it
// runs, and returns how many ran.
func (q *FIFOQueue) Drain() int {
	n := 0
	for q.RunNext() {
		n++
	}
	return n
}
