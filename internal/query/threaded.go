package query

import (
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/workqueue"
)

// Threaded submits one work queue task per query line. Concurrent tasks for
// the same key share a single search.
type Threaded struct {
	*store
	queue  *workqueue.WorkQueue
	flight singleflight.Group
}

var _ Engine = (*Threaded)(nil)

// NewThreaded answers queries against idx, which must be safe for concurrent
// reads, using queue's workers.
func NewThreaded(idx index.Index, mode index.SearchMode, queue *workqueue.WorkQueue, opts ...Option) *Threaded {
	return &Threaded{store: newStore(idx, mode, opts), queue: queue}
}

// ProcessFile submits every line and returns once the queue has drained. If
// the file cannot be read to the end, none of its answers are kept.
func (e *Threaded) ProcessFile(path string) error {
	before := e.mark()
	err := scanLines(path, func(line string) error {
		return e.queue.Execute(func() { e.ProcessLine(line) })
	})
	e.queue.Finish()
	if err != nil {
		e.rollback(before)
		return err
	}
	e.opts.logger.Info("queries processed", "path", path, "queries", e.NumQueries(), "mode", e.mode)
	return nil
}

// ProcessLine answers one line on the calling goroutine. It is safe to call
// from many goroutines at once.
func (e *Threaded) ProcessLine(line string) {
	key, stems := Canonical(line)
	if key == "" {
		e.record("empty")
		return
	}
	if e.has(key) {
		e.record("memoized")
		return
	}
	answered := false
	e.flight.Do(key, func() (any, error) {
		if !e.has(key) {
			answered = e.putIfAbsent(key, e.search(stems))
		}
		return nil, nil
	})
	if answered {
		e.record("answered")
		return
	}
	e.record("memoized")
}
