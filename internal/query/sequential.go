package query

import (
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/index"
)

// Sequential answers queries one at a time on the calling goroutine.
type Sequential struct {
	*store
}

var _ Engine = (*Sequential)(nil)

func NewSequential(idx index.Index, mode index.SearchMode, opts ...Option) *Sequential {
	return &Sequential{store: newStore(idx, mode, opts)}
}

// ProcessFile answers every line of path. If the file cannot be read to the
// end, none of its answers are kept.
func (e *Sequential) ProcessFile(path string) error {
	before := e.mark()
	err := scanLines(path, func(line string) error {
		e.ProcessLine(line)
		return nil
	})
	if err != nil {
		e.rollback(before)
		return err
	}
	e.opts.logger.Info("queries processed", "path", path, "queries", e.NumQueries(), "mode", e.mode)
	return nil
}

// ProcessLine searches line unless it is empty after stemming or was
// answered before.
func (e *Sequential) ProcessLine(line string) {
	key, stems := Canonical(line)
	if key == "" {
		e.record("empty")
		return
	}
	if e.has(key) {
		e.record("memoized")
		return
	}
	e.putIfAbsent(key, e.search(stems))
	e.record("answered")
}
