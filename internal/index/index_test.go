package index

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenario indexes a.txt = "cat dog cat" and b.txt = "dog bird".
func scenario(x Index) {
	x.AddAll([]string{"cat", "dog", "cat"}, "a.txt", 1)
	x.AddAll([]string{"dog", "bird"}, "b.txt", 1)
}

func TestAddCountsOnlyNewPositions(t *testing.T) {
	x := New()
	assert.True(t, x.Add("cat", "a.txt", 1))
	assert.False(t, x.Add("cat", "a.txt", 1))
	assert.True(t, x.Add("cat", "a.txt", 3))
	assert.True(t, x.Add("dog", "a.txt", 2))

	assert.Equal(t, 3, x.NumWordsInLocation("a.txt"))
	assert.Equal(t, []int{1, 3}, x.Positions("cat", "a.txt"))
}

func TestAddOutOfOrderStaysSorted(t *testing.T) {
	x := New()
	for _, p := range []int{5, 2, 9, 2, 1} {
		x.Add("w", "f", p)
	}
	assert.Equal(t, []int{1, 2, 5, 9}, x.Positions("w", "f"))
	assert.Equal(t, 4, x.NumWordsInLocation("f"))
}

func TestStructuralQueriesDefaults(t *testing.T) {
	x := New()
	scenario(x)

	assert.True(t, x.HasWord("cat"))
	assert.False(t, x.HasWord("cow"))
	assert.True(t, x.HasLocation("dog", "b.txt"))
	assert.False(t, x.HasLocation("cat", "b.txt"))
	assert.False(t, x.HasLocation("cow", "b.txt"))
	assert.True(t, x.HasPosition("cat", "a.txt", 3))
	assert.False(t, x.HasPosition("cat", "a.txt", 2))
	assert.False(t, x.HasPosition("cow", "a.txt", 1))

	assert.Equal(t, 3, x.NumWords())
	assert.Equal(t, 2, x.NumLocations("dog"))
	assert.Equal(t, 0, x.NumLocations("cow"))
	assert.Equal(t, 2, x.NumPositions("cat", "a.txt"))
	assert.Equal(t, 0, x.NumPositions("cat", "b.txt"))
	assert.Equal(t, 3, x.NumWordsInLocation("a.txt"))
	assert.Equal(t, 2, x.NumWordsInLocation("b.txt"))
	assert.Equal(t, 0, x.NumWordsInLocation("c.txt"))

	assert.Equal(t, []string{"bird", "cat", "dog"}, x.Words())
	assert.Equal(t, []string{"a.txt", "b.txt"}, x.Locations("dog"))
	assert.Empty(t, x.Locations("cow"))
	assert.Empty(t, x.Positions("cow", "a.txt"))
}

func TestAccessorsReturnCopies(t *testing.T) {
	x := New()
	scenario(x)

	words := x.Words()
	words[0] = "zzz"
	positions := x.Positions("cat", "a.txt")
	positions[0] = 99
	counts := x.Counts()
	counts["a.txt"] = 0
	snap := x.Snapshot()
	snap["cat"]["a.txt"][0] = 42

	assert.Equal(t, []string{"bird", "cat", "dog"}, x.Words())
	assert.Equal(t, []int{1, 3}, x.Positions("cat", "a.txt"))
	assert.Equal(t, 3, x.NumWordsInLocation("a.txt"))
}

func TestSearchScenario(t *testing.T) {
	for name, x := range map[string]Index{"plain": New(), "threadsafe": NewThreadSafe()} {
		t.Run(name, func(t *testing.T) {
			scenario(x)

			cat := x.SearchExact([]string{"cat"})
			require.Len(t, cat, 1)
			assert.Equal(t, "a.txt", cat[0].Location())
			assert.Equal(t, 2, cat[0].Count())
			assert.InDelta(t, 2.0/3.0, cat[0].Score(), 1e-9)

			ca := x.SearchPartial([]string{"ca"})
			assert.Equal(t, cat, ca)
			assert.Empty(t, x.SearchExact([]string{"ca"}))

			dog := x.Search([]string{"dog"}, Exact)
			require.Len(t, dog, 2)
			assert.Equal(t, "b.txt", dog[0].Location())
			assert.InDelta(t, 0.5, dog[0].Score(), 1e-9)
			assert.Equal(t, "a.txt", dog[1].Location())
			assert.InDelta(t, 1.0/3.0, dog[1].Score(), 1e-9)
		})
	}
}

func TestSearchMultipleWordsAccumulate(t *testing.T) {
	x := New()
	scenario(x)
	results := x.SearchExact([]string{"cat", "dog", "cat"})
	require.Len(t, results, 2)
	assert.Equal(t, "a.txt", results[0].Location())
	assert.Equal(t, 3, results[0].Count())
	assert.InDelta(t, 1.0, results[0].Score(), 1e-9)
	assert.Equal(t, "b.txt", results[1].Location())
	assert.Equal(t, 1, results[1].Count())
}

func TestPartialSearchStopsAtPrefixBoundary(t *testing.T) {
	x := New()
	x.AddAll([]string{"car", "cart", "carton", "cat", "bar", "ca"}, "f", 1)
	results := x.SearchPartial([]string{"car"})
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].Count())

	results = x.SearchPartial([]string{"zz"})
	assert.Empty(t, results)
}

func TestPartialIsSupersetOfExact(t *testing.T) {
	x := New()
	x.AddAll(strings.Fields("apple app application banana band ban apply"), "one", 1)
	x.AddAll(strings.Fields("app ban bandana apple"), "two", 1)
	x.AddAll(strings.Fields("zebra"), "three", 1)

	queries := []string{"app", "ban"}
	exact := map[string]int{}
	for _, r := range x.SearchExact(queries) {
		exact[r.Location()] = r.Count()
	}
	partial := map[string]int{}
	for _, r := range x.SearchPartial(queries) {
		partial[r.Location()] = r.Count()
	}
	for location, n := range exact {
		assert.GreaterOrEqual(t, partial[location], n, location)
	}
}

func TestMergeMatchesDirectAdds(t *testing.T) {
	direct := New()
	scenario(direct)
	direct.AddAll([]string{"cat", "eel"}, "c.txt", 1)

	merged := New()
	for _, file := range []struct {
		words    []string
		location string
	}{
		{[]string{"cat", "dog", "cat"}, "a.txt"},
		{[]string{"dog", "bird"}, "b.txt"},
		{[]string{"cat", "eel"}, "c.txt"},
	} {
		local := New()
		local.AddAll(file.words, file.location, 1)
		merged.Merge(local)
	}

	if diff := cmp.Diff(direct.Snapshot(), merged.Snapshot()); diff != "" {
		t.Errorf("Diff: (-direct +merged)\n%s", diff)
	}
	assert.Equal(t, direct.Counts(), merged.Counts())
	assert.Equal(t, direct.Words(), merged.Words())
}

func TestMergeOverlappingDoesNotDoubleCount(t *testing.T) {
	x := New()
	x.AddAll([]string{"cat", "dog"}, "a.txt", 1)
	other := New()
	other.AddAll([]string{"cat", "dog", "emu"}, "a.txt", 1)
	x.Merge(other)
	x.Merge(other)
	x.Merge(x)
	x.Merge(nil)

	assert.Equal(t, 3, x.NumWordsInLocation("a.txt"))
	assert.Equal(t, []string{"cat", "dog", "emu"}, x.Words())
}

func TestOrderingLaw(t *testing.T) {
	x := New()
	// same score and count, differing only by case-insensitive location
	x.AddAll([]string{"q", "z"}, "B.txt", 1)
	x.AddAll([]string{"q", "z"}, "a.txt", 1)
	// same score, more matches
	x.AddAll([]string{"q", "q", "z", "z"}, "c.txt", 1)
	// best score
	x.AddAll([]string{"q"}, "d.txt", 1)
	// worst score
	x.AddAll([]string{"q", "z", "z", "z"}, "e.txt", 1)

	results := x.SearchExact([]string{"q"})
	var order []string
	for _, r := range results {
		order = append(order, r.Location())
	}
	assert.Equal(t, []string{"d.txt", "c.txt", "a.txt", "B.txt", "e.txt"}, order)

	for i := 0; i+1 < len(results); i++ {
		a, b := results[i], results[i+1]
		ok := a.Score() > b.Score() ||
			(a.Score() == b.Score() && a.Count() > b.Count()) ||
			(a.Score() == b.Score() && a.Count() == b.Count() &&
				strings.ToLower(a.Location()) <= strings.ToLower(b.Location()))
		assert.True(t, ok, "%v before %v", a, b)
	}
}

func TestScoreExactToEightPlaces(t *testing.T) {
	x := New()
	words := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		words = append(words, fmt.Sprintf("w%d", i%3))
	}
	x.AddAll(words, "f", 1)
	r := x.SearchExact([]string{"w0"})
	require.Len(t, r, 1)
	assert.Equal(t, 3, r[0].Count())
	assert.Equal(t, math.Round(3.0/7.0*1e8), math.Round(r[0].Score()*1e8))
}

func TestWriteIndexAndCounts(t *testing.T) {
	x := NewThreadSafe()
	scenario(x)

	var buf bytes.Buffer
	require.NoError(t, x.WriteCounts(&buf))
	assert.JSONEq(t, `{"a.txt": 3, "b.txt": 2}`, buf.String())

	buf.Reset()
	require.NoError(t, x.WriteIndex(&buf))
	assert.JSONEq(t, `{"bird":{"b.txt":[2]},"cat":{"a.txt":[1,3]},"dog":{"a.txt":[2],"b.txt":[1]}}`, buf.String())
	assert.Contains(t, x.String(), "cat=map[a.txt:[1 3]]")
}
