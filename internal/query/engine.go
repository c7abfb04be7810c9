// Package query answers query files against an index. Each line is reduced to
// its sorted unique stems; the space-joined stems are the key under which the
// ranked results are stored, so a query is searched at most once per engine.
package query

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/jsonout"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/metrics"
)

// Engine processes query lines and keeps their results.
type Engine interface {
	// ProcessFile answers every line of the file at path. Only a file that
	// cannot be opened or read is reported.
	ProcessFile(path string) error
	ProcessLine(line string)

	HasQuery(line string) bool
	Queries() []string
	Results(line string) []index.FileResult
	NumResults(line string) int
	NumQueries() int
	Snapshot() map[string][]index.FileResult

	WriteResults(w io.Writer) error
}

// Canonical returns the stems of line and the key they are stored under. An
// empty key means the line holds no searchable words.
func Canonical(line string) (key string, stems []string) {
	stems = tokenizer.UniqueStems(line)
	return strings.Join(stems, " "), stems
}

// Option configures an engine.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default().With("component", "query-engine")
	}
	if o.metrics == nil {
		o.metrics = metrics.New(nil)
	}
	return o
}

// store is the results map shared by both engines. Every read and write of
// the map happens under mu.
type store struct {
	mu      sync.Mutex
	results map[string][]index.FileResult

	index index.Index
	mode  index.SearchMode
	opts  options
}

func newStore(idx index.Index, mode index.SearchMode, opts []Option) *store {
	return &store{
		results: make(map[string][]index.FileResult),
		index:   idx,
		mode:    mode,
		opts:    newOptions(opts),
	}
}

func (s *store) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.results[key]
	return ok
}

// putIfAbsent stores results under key unless another caller got there first.
func (s *store) putIfAbsent(key string, results []index.FileResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[key]; ok {
		return false
	}
	s.results[key] = results
	return true
}

// mark returns the keys stored so far, for a later rollback.
func (s *store) mark() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make(map[string]bool, len(s.results))
	for key := range s.results {
		keys[key] = true
	}
	return keys
}

// rollback drops every key stored since mark.
func (s *store) rollback(mark map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.results {
		if !mark[key] {
			delete(s.results, key)
		}
	}
}

func (s *store) search(stems []string) []index.FileResult {
	start := time.Now()
	results := s.index.Search(stems, s.mode)
	s.opts.metrics.SearchLatency.WithLabelValues(s.mode.String()).Observe(time.Since(start).Seconds())
	s.opts.metrics.SearchResultsCount.Observe(float64(len(results)))
	return results
}

func (s *store) record(outcome string) {
	s.opts.metrics.QueriesTotal.WithLabelValues(outcome).Inc()
}

func (s *store) HasQuery(line string) bool {
	key, _ := Canonical(line)
	return key != "" && s.has(key)
}

// Queries returns the stored query keys in sorted order.
func (s *store) Queries() []string {
	s.mu.Lock()
	keys := make([]string, 0, len(s.results))
	for key := range s.results {
		keys = append(keys, key)
	}
	s.mu.Unlock()
	sort.Strings(keys)
	return keys
}

// Results returns a copy of the ranked results for line, or nil when the line
// has not been answered.
func (s *store) Results(line string) []index.FileResult {
	key, _ := Canonical(line)
	s.mu.Lock()
	defer s.mu.Unlock()
	results, ok := s.results[key]
	if !ok {
		return nil
	}
	return append([]index.FileResult{}, results...)
}

func (s *store) NumResults(line string) int {
	key, _ := Canonical(line)
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results[key])
}

func (s *store) NumQueries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// Snapshot returns a copy of the whole results map.
func (s *store) Snapshot() map[string][]index.FileResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]index.FileResult, len(s.results))
	for key, results := range s.results {
		out[key] = append([]index.FileResult{}, results...)
	}
	return out
}

func (s *store) WriteResults(w io.Writer) error {
	return jsonout.WriteResults(w, s.Snapshot())
}

// scanLines calls fn for every line of the file at path.
func scanLines(path string, fn func(line string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return apperrors.Newf(apperrors.ErrInvalidPath, apperrors.ExitUsage, "query path %s: %v", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return apperrors.Newf(apperrors.ErrInvalidPath, apperrors.ExitUsage, "query path %s: %v", path, err)
	}
	if info.IsDir() {
		return apperrors.Newf(apperrors.ErrInvalidPath, apperrors.ExitUsage, "query path %s is a directory", path)
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return apperrors.Newf(apperrors.ErrInvalidPath, apperrors.ExitFailure, "reading queries from %s: %v", path, err)
	}
	return nil
}
