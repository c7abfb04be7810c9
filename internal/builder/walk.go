package builder

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the suffixes accepted when walking a directory.
var DefaultExtensions = []string{".txt", ".text"}

// TextFilter returns a predicate accepting paths that end with one of exts,
// ignoring case.
func TextFilter(exts []string) func(path string) bool {
	lowered := make([]string, 0, len(exts))
	for _, ext := range exts {
		if ext = strings.ToLower(strings.TrimSpace(ext)); ext != "" {
			lowered = append(lowered, ext)
		}
	}
	return func(path string) bool {
		name := strings.ToLower(path)
		for _, ext := range lowered {
			if strings.HasSuffix(name, ext) {
				return true
			}
		}
		return false
	}
}

// IsTextFile reports whether path ends in .txt or .text, ignoring case.
func IsTextFile(path string) bool {
	return TextFilter(DefaultExtensions)(path)
}

// Walk calls fn for every regular file below root that accept admits,
// descending into subdirectories in name order. Symbolic links are followed;
// a directory reached twice is skipped. Unreadable subdirectories are logged
// and skipped; only an unreadable root is returned as an error.
func Walk(root string, accept func(path string) bool, fn func(path string)) error {
	w := &walker{
		accept:  accept,
		fn:      fn,
		visited: make(map[string]struct{}),
		logger:  slog.Default().With("component", "walker"),
	}
	entries, err := w.readDir(root)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", root, err)
	}
	w.visit(root, entries)
	return nil
}

type walker struct {
	accept  func(string) bool
	fn      func(string)
	visited map[string]struct{}
	logger  *slog.Logger
}

func (w *walker) readDir(dir string) ([]os.DirEntry, error) {
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		if _, seen := w.visited[real]; seen {
			return nil, nil
		}
		w.visited[real] = struct{}{}
	}
	return os.ReadDir(dir)
}

func (w *walker) visit(dir string, entries []os.DirEntry) {
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			w.logger.Warn("skipping unreadable entry", "path", path, "error", err)
			continue
		}
		switch {
		case info.IsDir():
			children, err := w.readDir(path)
			if err != nil {
				w.logger.Error("skipping unreadable directory", "path", path, "error", err)
				continue
			}
			w.visit(path, children)
		case info.Mode().IsRegular() && w.accept(path):
			w.fn(path)
		}
	}
}
