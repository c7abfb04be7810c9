// Package workqueue runs zero-argument tasks on a fixed pool of worker
// goroutines. It counts pending work (queued plus running) so callers can
// block until everything submitted so far, including tasks submitted by other
// tasks, has finished.
package workqueue

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/metrics"
)

// DefaultWorkers is used when New receives a non-positive worker count.
const DefaultWorkers = 5

// Task is one unit of work.
type Task func()

// ErrorHandler receives the error produced by a task that panicked.
type ErrorHandler func(err error)

// Option configures a WorkQueue.
type Option func(*WorkQueue)

// WithMetrics reports queue activity to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(q *WorkQueue) { q.metrics = m }
}

// WithLogger replaces the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(q *WorkQueue) { q.logger = l }
}

// WithErrorHandler is called, from the worker goroutine, for every recovered
// task panic in addition to the error log line.
func WithErrorHandler(h ErrorHandler) Option {
	return func(q *WorkQueue) { q.onError = h }
}

// WorkQueue is a fixed-size worker pool over an unbounded FIFO of tasks.
type WorkQueue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	drained  *sync.Cond
	tasks    []Task
	pending  int
	closed   bool
	failures int

	size    int
	workers sync.WaitGroup
	logger  *slog.Logger
	metrics *metrics.Metrics
	onError ErrorHandler
}

// New starts a pool of n workers. n <= 0 falls back to DefaultWorkers.
func New(n int, opts ...Option) *WorkQueue {
	if n <= 0 {
		n = DefaultWorkers
	}
	q := &WorkQueue{
		size:   n,
		logger: slog.Default().With("component", "work-queue"),
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.drained = sync.NewCond(&q.mu)
	for _, opt := range opts {
		opt(q)
	}
	if q.metrics == nil {
		q.metrics = metrics.New(nil)
	}

	q.workers.Add(n)
	for i := 0; i < n; i++ {
		go q.worker(i)
	}
	q.metrics.Workers.Add(float64(n))
	q.logger.Debug("work queue started", "workers", n)
	return q
}

// Execute enqueues task. After Shutdown the task is dropped and
// ErrQueueClosed is returned.
func (q *WorkQueue) Execute(task Task) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return apperrors.ErrQueueClosed
	}
	q.pending++
	q.tasks = append(q.tasks, task)
	q.metrics.TasksPending.Set(float64(q.pending))
	q.notEmpty.Signal()
	q.mu.Unlock()

	q.metrics.TasksSubmittedTotal.Inc()
	return nil
}

// Finish blocks until every task submitted before or during the call has
// completed. New tasks may be submitted afterwards. Calling Finish from inside
// a task deadlocks.
func (q *WorkQueue) Finish() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.pending > 0 {
		q.drained.Wait()
	}
}

// Shutdown stops accepting tasks. Workers keep running until the queue is
// drained and then exit. It does not wait; use Join for that.
func (q *WorkQueue) Shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.notEmpty.Broadcast()
}

// Join waits for pending work, shuts the queue down and waits for every
// worker goroutine to exit.
func (q *WorkQueue) Join() {
	q.Finish()
	q.Shutdown()
	q.workers.Wait()
}

// Size returns the number of workers.
func (q *WorkQueue) Size() int {
	return q.size
}

// Pending returns the number of queued plus running tasks.
func (q *WorkQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Failures returns how many tasks have panicked so far.
func (q *WorkQueue) Failures() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.failures
}

func (q *WorkQueue) worker(id int) {
	defer func() {
		q.metrics.Workers.Dec()
		q.workers.Done()
	}()
	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.notEmpty.Wait()
		}
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			q.logger.Debug("worker exiting", "worker", id)
			return
		}
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		q.run(id, task)
		q.done()
	}
}

func (q *WorkQueue) run(id int, task Task) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err := fmt.Errorf("worker %d: %w", id,
			apperrors.Newf(apperrors.ErrTaskPanic, apperrors.ExitFailure, "%v", r))
		q.logger.Error("task panicked",
			"worker", id,
			"panic", fmt.Sprint(r),
			"stack", string(debug.Stack()),
		)
		q.metrics.TaskPanicsTotal.Inc()
		q.mu.Lock()
		q.failures++
		q.mu.Unlock()
		if q.onError != nil {
			q.onError(err)
		}
	}()
	task()
}

func (q *WorkQueue) done() {
	q.metrics.TasksCompletedTotal.Inc()
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending--
	q.metrics.TasksPending.Set(float64(q.pending))
	if q.pending == 0 {
		q.drained.Broadcast()
	}
}
