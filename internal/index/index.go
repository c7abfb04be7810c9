// Package index holds the word -> location -> positions inverted index, the
// per-location word totals used as the scoring denominator, and the
// exact/partial search that turns query stems into ranked FileResults.
package index

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/jsonout"
)

// Index is the capability shared by the plain and the thread-safe index.
type Index interface {
	Add(word, location string, position int) bool
	AddAll(words []string, location string, start int)
	Merge(other *InvertedIndex)

	HasWord(word string) bool
	HasLocation(word, location string) bool
	HasPosition(word, location string, position int) bool
	Words() []string
	Locations(word string) []string
	Positions(word, location string) []int
	NumWords() int
	NumLocations(word string) int
	NumPositions(word, location string) int
	NumWordsInLocation(location string) int
	Counts() map[string]int
	Snapshot() map[string]map[string][]int

	Search(queries []string, mode SearchMode) []FileResult
	SearchExact(queries []string) []FileResult
	SearchPartial(queries []string) []FileResult

	WriteIndex(w io.Writer) error
	WriteCounts(w io.Writer) error
	String() string
}

// InvertedIndex is not safe for concurrent use; see ThreadSafe.
type InvertedIndex struct {
	// word -> location -> strictly increasing positions
	entries map[string]map[string][]int
	// sorted keys of entries, for prefix range scans
	words  []string
	counts map[string]int
}

// New returns an empty index.
func New() *InvertedIndex {
	return &InvertedIndex{
		entries: make(map[string]map[string][]int),
		counts:  make(map[string]int),
	}
}

// Add records word at position in location. It returns false, and leaves the
// location total untouched, when the triple was already present.
func (x *InvertedIndex) Add(word, location string, position int) bool {
	locations, ok := x.entries[word]
	if !ok {
		locations = make(map[string][]int)
		x.entries[word] = locations
		x.insertWord(word)
	}
	positions, inserted := insertPosition(locations[location], position)
	if !inserted {
		return false
	}
	locations[location] = positions
	x.counts[location]++
	return true
}

// AddAll adds words in order at start, start+1, ...
func (x *InvertedIndex) AddAll(words []string, location string, start int) {
	for i, word := range words {
		x.Add(word, location, start+i)
	}
}

// Merge adds every entry of other. Only net-new positions count towards the
// location totals, the same as Add.
func (x *InvertedIndex) Merge(other *InvertedIndex) {
	if other == nil || other == x {
		return
	}
	var added []string
	for word, otherLocations := range other.entries {
		locations, ok := x.entries[word]
		if !ok {
			locations = make(map[string][]int, len(otherLocations))
			x.entries[word] = locations
			added = append(added, word)
		}
		for location, otherPositions := range otherLocations {
			current, ok := locations[location]
			if !ok {
				locations[location] = append([]int(nil), otherPositions...)
				x.counts[location] += len(otherPositions)
				continue
			}
			for _, p := range otherPositions {
				var inserted bool
				current, inserted = insertPosition(current, p)
				if inserted {
					x.counts[location]++
				}
			}
			locations[location] = current
		}
	}
	if len(added) > 0 {
		sort.Strings(added)
		x.words = mergeSorted(x.words, added)
	}
}

func (x *InvertedIndex) HasWord(word string) bool {
	_, ok := x.entries[word]
	return ok
}

func (x *InvertedIndex) HasLocation(word, location string) bool {
	_, ok := x.entries[word][location]
	return ok
}

func (x *InvertedIndex) HasPosition(word, location string, position int) bool {
	positions := x.entries[word][location]
	i := sort.SearchInts(positions, position)
	return i < len(positions) && positions[i] == position
}

// Words returns every indexed word in sorted order.
func (x *InvertedIndex) Words() []string {
	return append([]string(nil), x.words...)
}

// Locations returns the sorted locations of word.
func (x *InvertedIndex) Locations(word string) []string {
	locations := x.entries[word]
	out := make([]string, 0, len(locations))
	for location := range locations {
		out = append(out, location)
	}
	sort.Strings(out)
	return out
}

// Positions returns a copy of the positions of word in location.
func (x *InvertedIndex) Positions(word, location string) []int {
	return append([]int{}, x.entries[word][location]...)
}

func (x *InvertedIndex) NumWords() int {
	return len(x.entries)
}

func (x *InvertedIndex) NumLocations(word string) int {
	return len(x.entries[word])
}

func (x *InvertedIndex) NumPositions(word, location string) int {
	return len(x.entries[word][location])
}

func (x *InvertedIndex) NumWordsInLocation(location string) int {
	return x.counts[location]
}

// Counts returns a copy of the location totals.
func (x *InvertedIndex) Counts() map[string]int {
	out := make(map[string]int, len(x.counts))
	for location, n := range x.counts {
		out[location] = n
	}
	return out
}

// Snapshot returns a deep copy of the index contents.
func (x *InvertedIndex) Snapshot() map[string]map[string][]int {
	out := make(map[string]map[string][]int, len(x.entries))
	for word, locations := range x.entries {
		inner := make(map[string][]int, len(locations))
		for location, positions := range locations {
			inner[location] = append([]int(nil), positions...)
		}
		out[word] = inner
	}
	return out
}

// Search dispatches on mode.
func (x *InvertedIndex) Search(queries []string, mode SearchMode) []FileResult {
	if mode == Partial {
		return x.SearchPartial(queries)
	}
	return x.SearchExact(queries)
}

// SearchExact scores every location containing one of the query stems.
func (x *InvertedIndex) SearchExact(queries []string) []FileResult {
	s := x.newSearch()
	for _, query := range uniqueSorted(queries) {
		s.collect(query)
	}
	return s.results()
}

// SearchPartial scores every location containing a word that starts with one
// of the query stems. Each query scans only the contiguous run of sorted words
// sharing its prefix.
func (x *InvertedIndex) SearchPartial(queries []string) []FileResult {
	s := x.newSearch()
	for _, query := range uniqueSorted(queries) {
		for i := sort.SearchStrings(x.words, query); i < len(x.words); i++ {
			if !strings.HasPrefix(x.words[i], query) {
				break
			}
			s.collect(x.words[i])
		}
	}
	return s.results()
}

func (x *InvertedIndex) WriteIndex(w io.Writer) error {
	return jsonout.WriteIndex(w, x.entries)
}

func (x *InvertedIndex) WriteCounts(w io.Writer) error {
	return jsonout.WriteCounts(w, x.counts)
}

func (x *InvertedIndex) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, word := range x.words {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%v", word, x.entries[word])
	}
	sb.WriteString("}")
	return sb.String()
}

func (x *InvertedIndex) insertWord(word string) {
	i := sort.SearchStrings(x.words, word)
	x.words = append(x.words, "")
	copy(x.words[i+1:], x.words[i:])
	x.words[i] = word
}

type search struct {
	index  *InvertedIndex
	lookup map[string]*FileResult
	found  []*FileResult
}

func (x *InvertedIndex) newSearch() *search {
	return &search{index: x, lookup: make(map[string]*FileResult)}
}

func (s *search) collect(word string) {
	for location, positions := range s.index.entries[word] {
		result, ok := s.lookup[location]
		if !ok {
			result = NewFileResult(location, s.index.counts[location])
			s.lookup[location] = result
			s.found = append(s.found, result)
		}
		result.IncrementCount(len(positions))
	}
}

func (s *search) results() []FileResult {
	SortResults(s.found)
	out := make([]FileResult, len(s.found))
	for i, r := range s.found {
		out[i] = *r
	}
	return out
}

// insertPosition keeps positions sorted and unique. Positions normally
// arrive in increasing order, so the append path is checked first.
func insertPosition(positions []int, p int) ([]int, bool) {
	n := len(positions)
	if n == 0 || positions[n-1] < p {
		return append(positions, p), true
	}
	i := sort.SearchInts(positions, p)
	if positions[i] == p {
		return positions, false
	}
	positions = append(positions, 0)
	copy(positions[i+1:], positions[i:])
	positions[i] = p
	return positions, true
}

func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

func uniqueSorted(words []string) []string {
	if sort.StringsAreSorted(words) {
		out := words[:0:0]
		for i, w := range words {
			if i == 0 || w != words[i-1] {
				out = append(out, w)
			}
		}
		return out
	}
	sorted := append([]string(nil), words...)
	sort.Strings(sorted)
	return uniqueSorted(sorted)
}
