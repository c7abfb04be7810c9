package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Stats collects search and merge timings from concurrent goroutines.
type Stats struct {
	searches atomic.Int64
	hits     atomic.Int64
	merges   atomic.Int64

	mu             sync.Mutex
	latencies      []time.Duration
	mergeLatencies []time.Duration
	resultSizes    map[int]int64
}

func NewStats() *Stats {
	return &Stats{
		latencies:   make([]time.Duration, 0, 100000),
		resultSizes: make(map[int]int64),
	}
}

// RecordSearch counts one search that returned n locations.
func (s *Stats) RecordSearch(d time.Duration, n int) {
	s.searches.Add(1)
	if n > 0 {
		s.hits.Add(1)
	}
	s.mu.Lock()
	s.latencies = append(s.latencies, d)
	s.resultSizes[n]++
	s.mu.Unlock()
}

func (s *Stats) RecordMerge(d time.Duration) {
	s.merges.Add(1)
	s.mu.Lock()
	s.mergeLatencies = append(s.mergeLatencies, d)
	s.mu.Unlock()
}

// LatencySummary describes a sorted latency sample.
type LatencySummary struct {
	Min, Avg, P50, P90, P95, P99, Max, StdDev time.Duration
}

func summarize(latencies []time.Duration) LatencySummary {
	if len(latencies) == 0 {
		return LatencySummary{}
	}
	sorted := append([]time.Duration(nil), latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, l := range sorted {
		sum += l
	}
	avg := sum / time.Duration(len(sorted))

	var sumSquared float64
	for _, l := range sorted {
		diff := float64(l) - float64(avg)
		sumSquared += diff * diff
	}

	return LatencySummary{
		Min:    sorted[0],
		Avg:    avg,
		P50:    percentile(sorted, 50),
		P90:    percentile(sorted, 90),
		P95:    percentile(sorted, 95),
		P99:    percentile(sorted, 99),
		Max:    sorted[len(sorted)-1],
		StdDev: time.Duration(math.Sqrt(sumSquared / float64(len(sorted)))),
	}
}

// printReport writes the report and reports whether any search completed.
func printReport(w io.Writer, stats *Stats, elapsed time.Duration) bool {
	searches := stats.searches.Load()
	hits := stats.hits.Load()

	fmt.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "Searches:     %d\n", searches)
	fmt.Fprintf(w, "With matches: %d\n", hits)
	fmt.Fprintf(w, "Merges:       %d\n", stats.merges.Load())
	if searches > 0 && elapsed > 0 {
		fmt.Fprintf(w, "Searches/sec: %.2f\n", float64(searches)/elapsed.Seconds())
	}

	stats.mu.Lock()
	search := summarize(stats.latencies)
	merge := summarize(stats.mergeLatencies)
	sizes := make([]int, 0, len(stats.resultSizes))
	for n := range stats.resultSizes {
		sizes = append(sizes, n)
	}
	sort.Ints(sizes)
	counts := make([]int64, len(sizes))
	for i, n := range sizes {
		counts[i] = stats.resultSizes[n]
	}
	stats.mu.Unlock()

	if searches > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Search Latency ===")
		writeSummary(w, search)
	}
	if stats.merges.Load() > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Merge Latency ===")
		writeSummary(w, merge)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Locations Per Search ===")
	for i, n := range sizes {
		fmt.Fprintf(w, "  %d: %d\n", n, counts[i])
	}

	if searches == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "WARNING: No searches completed.")
		return false
	}
	return true
}

func writeSummary(w io.Writer, s LatencySummary) {
	fmt.Fprintf(w, "Min:    %s\n", s.Min)
	fmt.Fprintf(w, "Avg:    %s\n", s.Avg)
	fmt.Fprintf(w, "P50:    %s\n", s.P50)
	fmt.Fprintf(w, "P90:    %s\n", s.P90)
	fmt.Fprintf(w, "P95:    %s\n", s.P95)
	fmt.Fprintf(w, "P99:    %s\n", s.P99)
	fmt.Fprintf(w, "Max:    %s\n", s.Max)
	fmt.Fprintf(w, "StdDev: %s\n", s.StdDev)
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
