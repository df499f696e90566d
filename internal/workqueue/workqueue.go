// Package workqueue runs submitted tasks on a fixed set of worker goroutines.
package workqueue

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"search/internal/adapter/metrics"
	"search/internal/logger"
)

// DefaultWorkers is used when New is given a non-positive worker count.
const DefaultWorkers = 5

// ErrClosed is returned by Submit once Shutdown has begun.
var ErrClosed = errors.New("workqueue: closed")

// Task is a unit of work. A returned error is logged; it does not stop the
// worker.
type Task func() error

// Option configures a WorkQueue.
type Option func(*WorkQueue)

// WithLogger sets the logger used for task failures.
func WithLogger(logger *slog.Logger) Option {
	return func(q *WorkQueue) {
		q.logger = logger
	}
}

// WithMetrics records task counts and durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(q *WorkQueue) {
		q.metrics = m
	}
}

// WorkQueue is a fixed pool of workers draining an unbounded FIFO queue.
type WorkQueue struct {
	mu      sync.Mutex
	ready   *sync.Cond // signalled when tasks are queued or the queue closes
	idle    *sync.Cond // signalled when pending drops to zero
	tasks   []Task
	pending int
	closed  bool

	workers int
	wg      sync.WaitGroup
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New starts a queue with the given number of workers.
func New(workers int, opts ...Option) *WorkQueue {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	q := &WorkQueue{
		workers: workers,
		logger:  logger.WithComponent("workqueue"),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.ready = sync.NewCond(&q.mu)
	q.idle = sync.NewCond(&q.mu)

	q.wg.Add(workers)
	for i := range workers {
		go q.run(i)
	}
	return q
}

// Workers returns the number of worker goroutines.
func (q *WorkQueue) Workers() int {
	return q.workers
}

// Submit queues task for execution.
func (q *WorkQueue) Submit(task Task) error {
	if task == nil {
		return errors.New("workqueue: nil task")
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.tasks = append(q.tasks, task)
	q.pending++
	q.mu.Unlock()

	q.metrics.TaskSubmitted()
	q.ready.Signal()
	return nil
}

// Wait blocks until every submitted task has finished.
func (q *WorkQueue) Wait() {
	q.mu.Lock()
	for q.pending > 0 {
		q.idle.Wait()
	}
	q.mu.Unlock()
}

// Shutdown stops accepting tasks, lets the workers finish what is queued and
// waits for them to exit. It is safe to call more than once.
func (q *WorkQueue) Shutdown() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.ready.Broadcast()
	q.wg.Wait()
}

func (q *WorkQueue) run(id int) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.ready.Wait()
		}
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		q.execute(id, task)

		q.mu.Lock()
		q.pending--
		if q.pending == 0 {
			q.idle.Broadcast()
		}
		q.mu.Unlock()
	}
}

func (q *WorkQueue) execute(id int, task Task) {
	start := time.Now()
	outcome := metrics.TaskCompleted
	defer func() {
		if r := recover(); r != nil {
			outcome = metrics.TaskPanicked
			q.logger.Error("task panicked", "worker", id, "panic", fmt.Sprint(r))
		}
		q.metrics.TaskDone(outcome, time.Since(start))
	}()

	if err := task(); err != nil {
		outcome = metrics.TaskFailed
		q.logger.Warn("task failed", "worker", id, "error", err)
	}
}
