// Command loadtest hammers an in-memory index with concurrent searches while
// optional writers merge fresh documents into it, then reports latency.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/builder"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/query"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/workqueue"
)

type Config struct {
	Text     string
	Threads  int
	Readers  int
	Writers  int
	Duration time.Duration
	Mode     index.SearchMode
	Queries  [][]string
}

var defaultQueries = []string{
	"inverted index",
	"search engine",
	"query processing",
	"token stemming",
	"word count",
	"partial match",
	"reader writer lock",
	"work queue",
	"text file",
	"location score",
}

func main() {
	text := flag.String("text", "", "file or directory to index before the test")
	queriesPath := flag.String("queries", "", "query file, one query per line")
	threads := flag.Int("threads", 5, "workers used to build the index")
	readers := flag.Int("readers", 10, "concurrent searching goroutines")
	writers := flag.Int("writers", 1, "concurrent goroutines merging new documents")
	duration := flag.Duration("duration", 10*time.Second, "test duration")
	partial := flag.Bool("partial", false, "use partial search")
	flag.Parse()

	lines := defaultQueries
	if *queriesPath != "" {
		data, err := os.ReadFile(*queriesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading queries: %v\n", err)
			os.Exit(1)
		}
		lines = strings.Split(string(data), "\n")
	}

	cfg := Config{
		Text:     *text,
		Threads:  max(*threads, 1),
		Readers:  max(*readers, 1),
		Writers:  max(*writers, 0),
		Duration: *duration,
		Mode:     index.ModeFor(*partial),
		Queries:  canonicalQueries(lines),
	}
	if len(cfg.Queries) == 0 {
		fmt.Fprintln(os.Stderr, "no usable queries")
		os.Exit(1)
	}

	idx := index.NewThreadSafe()
	if cfg.Text != "" {
		queue := workqueue.New(cfg.Threads)
		start := time.Now()
		err := builder.NewThreaded(idx, queue).Build(cfg.Text)
		queue.Join()
		if err != nil {
			fmt.Fprintf(os.Stderr, "building index: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Indexed %d words in %s\n\n", idx.NumWords(), time.Since(start).Round(time.Millisecond))
	}

	fmt.Println("=== Index Load Test ===")
	fmt.Printf("Readers:  %d\n", cfg.Readers)
	fmt.Printf("Writers:  %d\n", cfg.Writers)
	fmt.Printf("Duration: %s\n", cfg.Duration)
	fmt.Printf("Mode:     %s\n", cfg.Mode)
	fmt.Printf("Queries:  %d unique\n", len(cfg.Queries))
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	started := time.Now()
	stats := runLoadTest(ctx, idx, cfg)
	if !printReport(os.Stdout, stats, time.Since(started)) {
		os.Exit(1)
	}
}

func canonicalQueries(lines []string) [][]string {
	seen := make(map[string]bool)
	var out [][]string
	for _, line := range lines {
		key, stems := query.Canonical(line)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, stems)
	}
	return out
}

// runLoadTest runs until ctx is done. Every reader searches and every writer
// merges at least once, even when ctx is already done.
func runLoadTest(ctx context.Context, idx *index.ThreadSafe, cfg Config) *Stats {
	stats := NewStats()
	var wg sync.WaitGroup

	for w := 0; w < cfg.Writers; w++ {
		wg.Add(1)
		go func(writerID int) {
			defer wg.Done()
			for n := 0; ; n++ {
				local := index.New()
				location := fmt.Sprintf("loadtest/writer-%d/doc-%d.txt", writerID, n)
				words := append([]string{}, cfg.Queries[n%len(cfg.Queries)]...)
				words = append(words, tokenizer.ListStems("generated document")...)
				local.AddAll(words, location, 1)

				start := time.Now()
				idx.Merge(local)
				stats.RecordMerge(time.Since(start))
				if ctx.Err() != nil {
					return
				}
				time.Sleep(time.Millisecond)
			}
		}(w)
	}

	for r := 0; r < cfg.Readers; r++ {
		wg.Add(1)
		go func(readerID int) {
			defer wg.Done()
			next := readerID
			for {
				stems := cfg.Queries[next%len(cfg.Queries)]
				next++

				start := time.Now()
				results := idx.Search(stems, cfg.Mode)
				stats.RecordSearch(time.Since(start), len(results))
				if ctx.Err() != nil {
					return
				}
			}
		}(r)
	}

	wg.Wait()
	return stats
}
