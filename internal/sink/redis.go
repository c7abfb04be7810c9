package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/resilience"
)

// Store is the part of redis.Client the sink uses.
type Store interface {
	SetMany(ctx context.Context, values map[string][]byte, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

// Redis caches each query's results as a JSON array under
// <prefix>:<run>:<query>, plus the run summary under <prefix>:<run>.
type Redis struct {
	store  Store
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedis(s Store, prefix string, ttl time.Duration) *Redis {
	return &Redis{
		store:  s,
		prefix: strings.TrimSuffix(prefix, ":"),
		ttl:    ttl,
		logger: slog.Default().With("component", "sink-redis"),
	}
}

func (r *Redis) Name() string { return "redis" }

// Key is where the results of query in run are stored.
func (r *Redis) Key(runID, query string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, runID, query)
}

func (r *Redis) Export(ctx context.Context, run *Run) error {
	values := make(map[string][]byte, len(run.Results)+1)
	for query, results := range run.Results {
		if results == nil {
			results = []index.FileResult{}
		}
		data, err := json.Marshal(results)
		if err != nil {
			return resilience.Permanent(fmt.Errorf("encoding results for %q: %w", query, err))
		}
		values[r.Key(run.ID, query)] = data
	}
	summary, err := json.Marshal(Summarize(run))
	if err != nil {
		return resilience.Permanent(fmt.Errorf("encoding run summary: %w", err))
	}
	values[fmt.Sprintf("%s:%s", r.prefix, run.ID)] = summary

	if err := r.store.SetMany(ctx, values, r.ttl); err != nil {
		return err
	}
	r.logger.Info("run cached", "run_id", run.ID, "keys", len(values), "ttl", r.ttl)
	return nil
}

func (r *Redis) Ping(ctx context.Context) error { return r.store.Ping(ctx) }

func (r *Redis) Close() error { return r.store.Close() }
