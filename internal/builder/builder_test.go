package builder

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/workqueue"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// corpus lays out a small tree with text files, a nested directory and files
// that must be ignored.
func corpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "animals.txt"), "The cats chased the dogs.\nDogs barked at cats!")
	writeFile(t, filepath.Join(root, "nested", "birds.TEXT"), "Birds sing; cats listen.")
	writeFile(t, filepath.Join(root, "nested", "deeper", "empty.txt"), "")
	writeFile(t, filepath.Join(root, "nested", "deeper", "fish.Txt"), "fish swim\n\nfish eat")
	writeFile(t, filepath.Join(root, "notes.md"), "cats and dogs")
	writeFile(t, filepath.Join(root, "data.csv"), "cats dogs")
	return root
}

func TestTextFilter(t *testing.T) {
	accept := TextFilter([]string{".txt", " .TEXT "})
	assert.True(t, accept("a.txt"))
	assert.True(t, accept("a.TXT"))
	assert.True(t, accept("dir/b.text"))
	assert.False(t, accept("c.md"))
	assert.False(t, accept("txt"))

	assert.True(t, IsTextFile("README.Text"))
	assert.False(t, IsTextFile("README"))
}

func TestWalkFindsTextFilesRecursively(t *testing.T) {
	root := corpus(t)

	var found []string
	require.NoError(t, Walk(root, IsTextFile, func(path string) {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		found = append(found, filepath.ToSlash(rel))
	}))

	assert.Equal(t, []string{
		"animals.txt",
		"nested/birds.TEXT",
		"nested/deeper/empty.txt",
		"nested/deeper/fish.Txt",
	}, found)
}

func TestWalkFollowsSymlinksOnce(t *testing.T) {
	root := corpus(t)
	if err := os.Symlink(filepath.Join(root, "nested"), filepath.Join(root, "nested", "deeper", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	count := 0
	require.NoError(t, Walk(root, IsTextFile, func(string) { count++ }))
	assert.Equal(t, 4, count)
}

func TestWalkMissingRoot(t *testing.T) {
	err := Walk(filepath.Join(t.TempDir(), "missing"), IsTextFile, func(string) {})
	assert.Error(t, err)
}

func TestSequentialBuild(t *testing.T) {
	root := corpus(t)
	idx := index.New()

	require.NoError(t, NewSequential(idx).Build(root))

	animals := filepath.Join(root, "animals.txt")
	assert.Equal(t, []int{2, 9}, idx.Positions("cat", animals))
	assert.Equal(t, []int{5, 6}, idx.Positions("dog", animals))
	assert.Equal(t, 9, idx.NumWordsInLocation(animals))

	fish := filepath.Join(root, "nested", "deeper", "fish.Txt")
	assert.Equal(t, []int{1, 3}, idx.Positions("fish", fish))
	assert.Equal(t, 4, idx.NumWordsInLocation(fish))

	assert.Equal(t, 2, idx.NumLocations("cat"))
	assert.False(t, idx.HasLocation("cat", filepath.Join(root, "notes.md")))
	_, ok := idx.Counts()[filepath.Join(root, "nested", "deeper", "empty.txt")]
	assert.False(t, ok)
}

func TestSingleFileIgnoresExtension(t *testing.T) {
	root := corpus(t)
	notes := filepath.Join(root, "notes.md")
	idx := index.New()

	require.NoError(t, NewSequential(idx).Build(notes))

	assert.Equal(t, []string{notes}, idx.Locations("cat"))
	assert.Equal(t, 3, idx.NumWordsInLocation(notes))
}

func TestBuildMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	err := NewSequential(index.New()).Build(missing)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidPath))
	assert.Equal(t, apperrors.ExitUsage, apperrors.ExitCode(err))

	q := workqueue.New(2)
	defer q.Join()
	err = NewThreaded(index.NewThreadSafe(), q).Build(missing)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidPath))
}

func TestThreadedMatchesSequential(t *testing.T) {
	root := corpus(t)
	for i := 0; i < 20; i++ {
		writeFile(t, filepath.Join(root, "bulk", "file"+string(rune('a'+i))+".txt"),
			"running runner runs quickly across the hills and the valleys")
	}

	sequential := index.New()
	require.NoError(t, NewSequential(sequential).Build(root))

	for _, workers := range []int{1, 3, 8} {
		q := workqueue.New(workers)
		threaded := index.NewThreadSafe()
		require.NoError(t, NewThreaded(threaded, q).Build(root))
		assert.Zero(t, q.Pending(), "build must return after the queue drains")
		q.Join()

		if diff := cmp.Diff(sequential.Snapshot(), threaded.Snapshot()); diff != "" {
			t.Errorf("workers=%d index mismatch (-sequential +threaded):\n%s", workers, diff)
		}
		assert.Equal(t, sequential.Counts(), threaded.Counts())
	}
}

func TestThreadedSkipsUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := corpus(t)
	locked := filepath.Join(root, "locked.txt")
	writeFile(t, locked, "secret words")
	require.NoError(t, os.Chmod(locked, 0))

	q := workqueue.New(2)
	defer q.Join()
	idx := index.NewThreadSafe()
	b := NewThreaded(idx, q)

	require.NoError(t, b.Build(root))
	assert.Len(t, b.Failures(), 1)
	assert.True(t, idx.HasWord("cat"))
	assert.False(t, idx.HasWord("secret"))
}

func TestThreadedSingleFileFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	locked := filepath.Join(t.TempDir(), "locked.txt")
	writeFile(t, locked, "secret")
	require.NoError(t, os.Chmod(locked, 0))

	q := workqueue.New(2)
	defer q.Join()
	assert.Error(t, NewThreaded(index.NewThreadSafe(), q).Build(locked))
}

func TestIndexFileCustomExtensions(t *testing.T) {
	root := corpus(t)
	idx := index.New()
	require.NoError(t, NewSequential(idx, WithExtensions([]string{".md", ".csv"})).Build(root))

	var locations []string
	for _, loc := range idx.Locations("cat") {
		rel, _ := filepath.Rel(root, loc)
		locations = append(locations, rel)
	}
	sort.Strings(locations)
	assert.Equal(t, []string{"data.csv", "notes.md"}, locations)
}
