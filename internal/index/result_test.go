package index

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileResultIncrement(t *testing.T) {
	r := NewFileResult("a.txt", 4)
	r.IncrementCount(1)
	assert.Equal(t, 1, r.Count())
	assert.InDelta(t, 0.25, r.Score(), 1e-12)
	r.IncrementCount(2)
	assert.Equal(t, 3, r.Count())
	assert.InDelta(t, 0.75, r.Score(), 1e-12)
}

func TestFileResultZeroTotalKeepsZeroScore(t *testing.T) {
	r := NewFileResult("empty", 0)
	r.IncrementCount(5)
	assert.Equal(t, 0.0, r.Score())
}

func TestFileResultJSON(t *testing.T) {
	r := NewFileResult(`dir/"quoted".txt`, 3)
	r.IncrementCount(2)
	data, err := json.Marshal(*r)
	require.NoError(t, err)
	assert.Equal(t, `{"count":2,"score":0.66666667,"where":"dir/\"quoted\".txt"}`, string(data))
}

func TestSortResults(t *testing.T) {
	a := NewFileResult("a", 10)
	a.IncrementCount(1)
	b := NewFileResult("b", 5)
	b.IncrementCount(1)
	c := NewFileResult("C", 10)
	c.IncrementCount(1)
	results := []*FileResult{a, c, b}
	SortResults(results)
	assert.Equal(t, []string{"b", "a", "C"}, []string{results[0].Location(), results[1].Location(), results[2].Location()})
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, Partial, ModeFor(true))
	assert.Equal(t, Exact, ModeFor(false))
	assert.Equal(t, "partial", Partial.String())
	assert.Equal(t, "exact", Exact.String())
}

func TestCompareCaseOnlyDifference(t *testing.T) {
	upper := NewFileResult("Notes.txt", 4)
	upper.IncrementCount(1)
	lower := NewFileResult("notes.txt", 4)
	lower.IncrementCount(1)

	assert.Equal(t, -1, upper.Compare(lower))
	assert.Equal(t, 1, lower.Compare(upper))
	assert.Equal(t, 0, upper.Compare(upper))
}
