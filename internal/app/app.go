// Package app runs one command-line invocation: build the index from -text,
// write -index and -counts, answer -query, write -results, and export the
// run to any configured sinks.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/builder"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/jsonout"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/query"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/sink"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/workqueue"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/tracing"
)

const readyTimeout = 10 * time.Second

// App holds what one run needs.
type App struct {
	cfg     *config.Config
	opts    Options
	metrics *metrics.Metrics
	sinks   *sink.Fanout
}

// New prepares a run. A nil fanout disables export.
func New(cfg *config.Config, opts Options, m *metrics.Metrics, sinks *sink.Fanout) *App {
	if m == nil {
		m = metrics.New(nil)
	}
	if sinks == nil {
		sinks = sink.NewFanout(nil)
	}
	return &App{cfg: cfg, opts: opts, metrics: m, sinks: sinks}
}

// Run executes every requested stage. A failing stage is logged and the
// remaining stages still run; the returned error joins all stage failures.
func (a *App) Run(ctx context.Context) error {
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx).With("component", "driver")
	started := time.Now()

	if a.cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(a.cfg.Metrics.Port, map[string]http.Handler{
			"/metrics": middleware.Metrics(a.metrics, "/metrics")(a.metrics.Handler()),
			"/readyz": middleware.Chain(a.sinks.Checker().ReadyHandler(),
				middleware.Metrics(a.metrics, "/readyz"),
				middleware.Timeout(readyTimeout),
			),
		})
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Warn("metrics server shutdown", "error", err)
			}
		}()
	}

	idx, build, engine, stop := a.wire(log)
	defer stop()

	ctx, root := tracing.Start(ctx, "run", runID)
	root.SetAttr("mode", a.opts.Mode.String())
	root.SetAttr("threads", a.opts.Threads)

	var errs []error
	stage := func(name string, fn func(span *tracing.Span) error) {
		_, span := tracing.StartChild(ctx, name)
		err := fn(span)
		span.EndErr(err)
		if err != nil {
			log.Error("stage failed", "stage", name, "error", err)
			errs = append(errs, err)
		}
	}

	if a.opts.Text != "" {
		stage("text", func(span *tracing.Span) error {
			err := build.Build(a.opts.Text)
			a.metrics.IndexWords.Set(float64(idx.NumWords()))
			span.SetAttr("words", idx.NumWords())
			log.Info("index built", "path", a.opts.Text, "words", idx.NumWords(), "locations", len(idx.Counts()))
			return err
		})
	}
	if a.opts.Index != "" {
		stage("index", func(*tracing.Span) error {
			return writeOutput(log, a.opts.Index, idx.WriteIndex)
		})
	}
	if a.opts.Counts != "" {
		stage("counts", func(*tracing.Span) error {
			return writeOutput(log, a.opts.Counts, idx.WriteCounts)
		})
	}
	if a.opts.Query != "" {
		stage("query", func(span *tracing.Span) error {
			err := engine.ProcessFile(a.opts.Query)
			span.SetAttr("queries", engine.NumQueries())
			return err
		})
	}
	if a.opts.Results != "" {
		stage("results", func(*tracing.Span) error {
			return writeOutput(log, a.opts.Results, engine.WriteResults)
		})
	}

	if a.sinks.Len() > 0 {
		stage("export", func(span *tracing.Span) error {
			span.SetAttr("sinks", a.sinks.Len())
			run := &sink.Run{
				ID:       runID,
				Mode:     a.opts.Mode,
				Started:  started,
				Finished: time.Now(),
				Counts:   idx.Counts(),
				Results:  engine.Snapshot(),
			}
			return a.sinks.Export(ctx, run)
		})
	}

	root.EndErr(errors.Join(errs...))
	root.Log(log, slog.LevelDebug)

	log.Info("run finished",
		"duration", time.Since(started).Round(time.Millisecond),
		"queries", engine.NumQueries(),
		"failed_stages", len(errs),
	)
	return errors.Join(errs...)
}

// wire picks the sequential or the work-queue implementation of every stage.
// stop releases the queue's workers.
func (a *App) wire(log *slog.Logger) (index.Index, builder.Builder, query.Engine, func()) {
	builderOpts := []builder.Option{
		builder.WithExtensions(a.cfg.Engine.Extensions),
		builder.WithMetrics(a.metrics),
	}
	queryOpts := []query.Option{query.WithMetrics(a.metrics)}

	if !a.opts.Threaded() {
		idx := index.New()
		return idx,
			builder.NewSequential(idx, builderOpts...),
			query.NewSequential(idx, a.opts.Mode, queryOpts...),
			func() {}
	}

	queue := workqueue.New(a.opts.Threads, workqueue.WithMetrics(a.metrics))
	idx := index.NewThreadSafe()
	log.Debug("using work queue", "workers", a.opts.Threads)
	return idx,
		builder.NewThreaded(idx, queue, builderOpts...),
		query.NewThreaded(idx, a.opts.Mode, queue, queryOpts...),
		queue.Join
}

func writeOutput(log *slog.Logger, path string, write func(w io.Writer) error) error {
	if err := jsonout.ToFile(path, write); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if info, err := os.Stat(path); err == nil {
		log.Info("output written", "path", path, "size", humanize.Bytes(uint64(info.Size())))
	}
	return nil
}
