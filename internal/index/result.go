package index

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// SearchMode selects how query stems are matched against indexed stems.
type SearchMode int

const (
	// Exact matches stems equal to a query stem.
	Exact SearchMode = iota
	// Partial matches stems that start with a query stem.
	Partial
)

func (m SearchMode) String() string {
	switch m {
	case Exact:
		return "exact"
	case Partial:
		return "partial"
	default:
		return fmt.Sprintf("SearchMode(%d)", int(m))
	}
}

// ModeFor maps the partial flag onto a SearchMode.
func ModeFor(partial bool) SearchMode {
	if partial {
		return Partial
	}
	return Exact
}

// FileResult is how well one location matched one query.
type FileResult struct {
	location   string
	totalWords int
	count      int
	score      float64
}

// NewFileResult starts an empty result for location, which holds totalWords
// indexed words.
func NewFileResult(location string, totalWords int) *FileResult {
	return &FileResult{location: location, totalWords: totalWords}
}

func (r *FileResult) Location() string { return r.location }

func (r *FileResult) Count() int { return r.count }

func (r *FileResult) Score() float64 { return r.score }

// IncrementCount adds n matches and recomputes the score.
func (r *FileResult) IncrementCount(n int) {
	r.count += n
	if r.totalWords != 0 {
		r.score = float64(r.count) / float64(r.totalWords)
	}
}

// Compare orders results by score descending, then count descending, then
// location ascending ignoring case.
func (r *FileResult) Compare(other *FileResult) int {
	switch {
	case r.score > other.score:
		return -1
	case r.score < other.score:
		return 1
	case r.count > other.count:
		return -1
	case r.count < other.count:
		return 1
	}
	if c := strings.Compare(strings.ToLower(r.location), strings.ToLower(other.location)); c != 0 {
		return c
	}
	// Locations equal ignoring case still get a fixed order.
	return strings.Compare(r.location, other.location)
}

// MarshalJSON writes the score with eight decimal places.
func (r FileResult) MarshalJSON() ([]byte, error) {
	where, err := json.Marshal(r.location)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf(`{"count":%d,"score":%.8f,"where":%s}`, r.count, r.score, where)), nil
}

func (r FileResult) String() string {
	return fmt.Sprintf("%s (count=%d, score=%.8f)", r.location, r.count, r.score)
}

// SortResults sorts results in place by the FileResult ordering.
func SortResults(results []*FileResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Compare(results[j]) < 0
	})
}
