package index

import (
	"io"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/lock"
)

// ThreadSafe guards an InvertedIndex with a MultiReaderLock: writes take the
// write lock for the whole call, reads share the read lock. Every accessor
// returns copies, so callers never hold references into the guarded maps.
type ThreadSafe struct {
	lock  *lock.MultiReaderLock
	index *InvertedIndex
}

// NewThreadSafe returns an empty thread-safe index.
func NewThreadSafe() *ThreadSafe {
	return &ThreadSafe{
		lock:  lock.New(),
		index: New(),
	}
}

func (t *ThreadSafe) Add(word, location string, position int) bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.index.Add(word, location, position)
}

func (t *ThreadSafe) AddAll(words []string, location string, start int) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.index.AddAll(words, location, start)
}

// Merge absorbs a privately built index under a single write lock.
func (t *ThreadSafe) Merge(other *InvertedIndex) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.index.Merge(other)
}

func (t *ThreadSafe) HasWord(word string) bool {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.HasWord(word)
}

func (t *ThreadSafe) HasLocation(word, location string) bool {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.HasLocation(word, location)
}

func (t *ThreadSafe) HasPosition(word, location string, position int) bool {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.HasPosition(word, location, position)
}

func (t *ThreadSafe) Words() []string {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.Words()
}

func (t *ThreadSafe) Locations(word string) []string {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.Locations(word)
}

func (t *ThreadSafe) Positions(word, location string) []int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.Positions(word, location)
}

func (t *ThreadSafe) NumWords() int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.NumWords()
}

func (t *ThreadSafe) NumLocations(word string) int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.NumLocations(word)
}

func (t *ThreadSafe) NumPositions(word, location string) int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.NumPositions(word, location)
}

func (t *ThreadSafe) NumWordsInLocation(location string) int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.NumWordsInLocation(location)
}

func (t *ThreadSafe) Counts() map[string]int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.Counts()
}

func (t *ThreadSafe) Snapshot() map[string]map[string][]int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.Snapshot()
}

func (t *ThreadSafe) Search(queries []string, mode SearchMode) []FileResult {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.Search(queries, mode)
}

func (t *ThreadSafe) SearchExact(queries []string) []FileResult {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.SearchExact(queries)
}

func (t *ThreadSafe) SearchPartial(queries []string) []FileResult {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.SearchPartial(queries)
}

func (t *ThreadSafe) WriteIndex(w io.Writer) error {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.WriteIndex(w)
}

func (t *ThreadSafe) WriteCounts(w io.Writer) error {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.WriteCounts(w)
}

func (t *ThreadSafe) String() string {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.index.String()
}

var (
	_ Index = (*InvertedIndex)(nil)
	_ Index = (*ThreadSafe)(nil)
)
