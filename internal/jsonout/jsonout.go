// Package jsonout writes the index, the per-location word counts and query
// results as indented JSON with sorted keys.
package jsonout

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

const indent = "  "

// Write encodes v with two-space indentation followed by a newline. HTML
// characters are left unescaped so paths print as-is.
func Write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", indent)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// WriteIndex writes word -> location -> positions.
func WriteIndex(w io.Writer, index map[string]map[string][]int) error {
	if index == nil {
		index = map[string]map[string][]int{}
	}
	return Write(w, index)
}

// WriteCounts writes location -> total words. Locations with a zero total are
// left out.
func WriteCounts(w io.Writer, counts map[string]int) error {
	out := make(map[string]int, len(counts))
	for location, n := range counts {
		if n > 0 {
			out[location] = n
		}
	}
	return Write(w, out)
}

// WriteResults writes query -> ordered results. A query without matches is
// written as an empty array rather than null.
func WriteResults[R any](w io.Writer, results map[string][]R) error {
	out := make(map[string][]R, len(results))
	for query, list := range results {
		if list == nil {
			list = []R{}
		}
		out[query] = list
	}
	return Write(w, out)
}

// ToFile creates or truncates path and runs write against it through a
// buffer.
func ToFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
