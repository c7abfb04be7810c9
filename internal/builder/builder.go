// Package builder fills an inverted index from a file or a directory tree of
// text files, either inline or by handing one task per file to a work queue.
package builder

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/workqueue"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/metrics"
)

// Builder indexes everything found at a path.
type Builder interface {
	Build(path string) error
}

type adder interface {
	Add(word, location string, position int) bool
}

// IndexFile stems every word of the file at path into idx, using path as the
// location and numbering words from 1.
func IndexFile(path string, idx adder) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	if err := tokenizer.ScanStems(f, func(stem string, position int) {
		idx.Add(stem, path, position)
	}); err != nil {
		return fmt.Errorf("indexing %s: %w", path, err)
	}
	return nil
}

// Option configures a builder.
type Option func(*options)

type options struct {
	extensions []string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// WithExtensions replaces DefaultExtensions for directory walks.
func WithExtensions(exts []string) Option {
	return func(o *options) { o.extensions = exts }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func newOptions(opts []Option) options {
	o := options{extensions: DefaultExtensions}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default().With("component", "index-builder")
	}
	if o.metrics == nil {
		o.metrics = metrics.New(nil)
	}
	return o
}

// failures collects per-file errors. They are logged and do not stop the
// build.
type failures struct {
	mu   sync.Mutex
	errs []error
}

func (f *failures) add(err error) {
	f.mu.Lock()
	f.errs = append(f.errs, err)
	f.mu.Unlock()
}

func (f *failures) list() []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]error(nil), f.errs...)
}

// Sequential indexes files one after another on the calling goroutine.
type Sequential struct {
	index index.Index
	opts  options
	fails failures
}

func NewSequential(idx index.Index, opts ...Option) *Sequential {
	return &Sequential{index: idx, opts: newOptions(opts)}
}

// Build indexes path. A regular file is indexed whatever its extension; a
// directory is walked for text files. Only a path that is neither, or a
// single-file path that cannot be read, is returned as an error.
func (b *Sequential) Build(path string) error {
	return build(path, b.opts, func(file string) error {
		return b.indexOne(file)
	}, func() {}, &b.fails)
}

// Failures returns the per-file errors seen so far.
func (b *Sequential) Failures() []error {
	return b.fails.list()
}

func (b *Sequential) indexOne(path string) error {
	if err := IndexFile(path, b.index); err != nil {
		b.opts.metrics.FilesIndexedTotal.WithLabelValues("error").Inc()
		return err
	}
	b.opts.metrics.FilesIndexedTotal.WithLabelValues("ok").Inc()
	return nil
}

// Threaded submits one task per file to a work queue. Each task stems its
// file into a private index and merges it into the shared index with one
// write lock.
type Threaded struct {
	index *index.ThreadSafe
	queue *workqueue.WorkQueue
	opts  options
	fails failures
}

func NewThreaded(idx *index.ThreadSafe, queue *workqueue.WorkQueue, opts ...Option) *Threaded {
	return &Threaded{index: idx, queue: queue, opts: newOptions(opts)}
}

// Build behaves like Sequential.Build but runs file work on the queue and
// returns only after the queue has drained.
func (b *Threaded) Build(path string) error {
	return build(path, b.opts, b.submit, b.queue.Finish, &b.fails)
}

// Failures returns the per-file errors seen so far.
func (b *Threaded) Failures() []error {
	return b.fails.list()
}

func (b *Threaded) submit(path string) error {
	return b.queue.Execute(func() {
		if err := b.indexOne(path); err != nil {
			b.opts.logger.Error("failed to index file", "path", path, "error", err)
			b.fails.add(err)
		}
	})
}

func (b *Threaded) indexOne(path string) error {
	local := index.New()
	if err := IndexFile(path, local); err != nil {
		b.opts.metrics.FilesIndexedTotal.WithLabelValues("error").Inc()
		return err
	}
	start := time.Now()
	b.index.Merge(local)
	b.opts.metrics.IndexMergeDuration.Observe(time.Since(start).Seconds())
	b.opts.metrics.FilesIndexedTotal.WithLabelValues("ok").Inc()
	return nil
}

// build drives one Build call. process handles one file; for the threaded
// builder it only enqueues, so wait is called before results are inspected.
func build(path string, o options, process func(string) error, wait func(), fails *failures) error {
	info, err := os.Stat(path)
	if err != nil {
		return apperrors.Newf(apperrors.ErrInvalidPath, apperrors.ExitUsage, "text path %s: %v", path, err)
	}
	start := time.Now()
	before := len(fails.list())

	switch {
	case info.Mode().IsRegular():
		if err := process(path); err != nil {
			wait()
			return err
		}
		wait()
		if errs := fails.list(); len(errs) > before {
			return errs[len(errs)-1]
		}
	case info.IsDir():
		accept := TextFilter(o.extensions)
		walkErr := Walk(path, accept, func(file string) {
			if err := process(file); err != nil {
				o.logger.Error("failed to index file", "path", file, "error", err)
				fails.add(err)
			}
		})
		wait()
		if walkErr != nil {
			return apperrors.Newf(apperrors.ErrInvalidPath, apperrors.ExitUsage, "%v", walkErr)
		}
	default:
		return apperrors.Newf(apperrors.ErrInvalidPath, apperrors.ExitUsage, "text path %s is neither a file nor a directory", path)
	}

	o.logger.Info("index build complete",
		"path", path,
		"failed_files", len(fails.list())-before,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
