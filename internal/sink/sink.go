// Package sink exports a finished run, its per-location word counts and its
// query results, to external services. Sinks are opt-in; a run with no sink
// configured never touches the network.
package sink

import (
	"context"
	"sort"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/index"
)

// Run is the exportable outcome of one invocation.
type Run struct {
	ID       string
	Mode     index.SearchMode
	Started  time.Time
	Finished time.Time
	Counts   map[string]int
	Results  map[string][]index.FileResult
}

// Queries returns the result keys in sorted order.
func (r *Run) Queries() []string {
	queries := make([]string, 0, len(r.Results))
	for q := range r.Results {
		queries = append(queries, q)
	}
	sort.Strings(queries)
	return queries
}

// Sink is one export destination.
type Sink interface {
	Name() string
	Export(ctx context.Context, run *Run) error
	Ping(ctx context.Context) error
	Close() error
}

// Summary is the run-level record shared by every sink.
type Summary struct {
	Type       string    `json:"type"`
	RunID      string    `json:"run_id"`
	Mode       string    `json:"mode"`
	Locations  int       `json:"locations"`
	Words      int       `json:"words"`
	Queries    int       `json:"queries"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Summarize builds the run.complete record for run.
func Summarize(run *Run) Summary {
	words := 0
	for _, n := range run.Counts {
		words += n
	}
	return Summary{
		Type:       "run.complete",
		RunID:      run.ID,
		Mode:       run.Mode.String(),
		Locations:  len(run.Counts),
		Words:      words,
		Queries:    len(run.Results),
		StartedAt:  run.Started.UTC(),
		FinishedAt: run.Finished.UTC(),
	}
}

// QueryResults is the per-query record published by the Kafka sink.
type QueryResults struct {
	Type    string             `json:"type"`
	RunID   string             `json:"run_id"`
	Query   string             `json:"query"`
	Mode    string             `json:"mode"`
	Results []index.FileResult `json:"results"`
}
