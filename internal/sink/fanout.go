package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/resilience"
)

// Fanout exports a run to several sinks concurrently. Sinks that fail their
// health check are skipped; the rest are retried independently so one slow
// or broken service does not hold back the others.
type Fanout struct {
	sinks   []Sink
	checker *health.Checker
	backoff resilience.Backoff
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Fanout.
type Option func(*Fanout)

func WithBackoff(b resilience.Backoff) Option {
	return func(f *Fanout) { f.backoff = b }
}

// WithTimeout bounds one Export call, health checks included.
func WithTimeout(d time.Duration) Option {
	return func(f *Fanout) { f.timeout = d }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fanout) { f.metrics = m }
}

func NewFanout(sinks []Sink, opts ...Option) *Fanout {
	f := &Fanout{
		sinks:   sinks,
		checker: health.NewChecker(),
		logger:  slog.Default().With("component", "sink-fanout"),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.metrics == nil {
		f.metrics = metrics.New(nil)
	}
	for _, s := range sinks {
		f.checker.Register(s.Name(), health.Ping(s.Ping))
	}
	return f
}

// Len is the number of configured sinks.
func (f *Fanout) Len() int { return len(f.sinks) }

// Checker exposes the sinks' health checks, e.g. for a readiness endpoint.
func (f *Fanout) Checker() *health.Checker { return f.checker }

// Export sends run to every healthy sink. The returned error joins the
// failures of all sinks; unhealthy sinks contribute ErrSinkUnavailable.
func (f *Fanout) Export(ctx context.Context, run *Run) error {
	if len(f.sinks) == 0 {
		return nil
	}
	return resilience.WithTimeout(ctx, f.timeout, "sink export", func(ctx context.Context) error {
		report := f.checker.Run(ctx)
		errs := make([]error, len(f.sinks))

		var g errgroup.Group
		for i, s := range f.sinks {
			if c := report.Components[s.Name()]; c.Status != health.StatusUp {
				f.logger.Error("sink unavailable, skipping export", "sink", s.Name(), "reason", c.Message)
				f.metrics.SinkExportsTotal.WithLabelValues(s.Name(), "unavailable").Inc()
				errs[i] = apperrors.Newf(apperrors.ErrSinkUnavailable, apperrors.ExitFailure, "%s: %s", s.Name(), c.Message)
				continue
			}
			g.Go(func() error {
				err := resilience.Retry(ctx, "export to "+s.Name(), f.backoff, func(ctx context.Context) error {
					return s.Export(ctx, run)
				})
				if err != nil {
					f.metrics.SinkExportsTotal.WithLabelValues(s.Name(), "error").Inc()
					errs[i] = fmt.Errorf("exporting to %s: %w", s.Name(), err)
					return errs[i]
				}
				f.metrics.SinkExportsTotal.WithLabelValues(s.Name(), "ok").Inc()
				return nil
			})
		}
		_ = g.Wait()
		return errors.Join(errs...)
	})
}

// Close closes every sink.
func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Open connects the sinks enabled in cfg. Sinks opened before a failure are
// closed again and the failure is reported as ErrSinkUnavailable.
func Open(ctx context.Context, cfg config.SinksConfig, opts ...Option) (*Fanout, error) {
	var sinks []Sink
	fail := func(name string, err error) (*Fanout, error) {
		for _, s := range sinks {
			s.Close()
		}
		return nil, apperrors.Newf(apperrors.ErrSinkUnavailable, apperrors.ExitFailure, "opening %s sink: %v", name, err)
	}

	if cfg.Kafka.Enabled {
		sinks = append(sinks, NewKafka(kafka.NewProducer(cfg.Kafka)))
	}
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fail("redis", err)
		}
		sinks = append(sinks, NewRedis(client, cfg.Redis.KeyPrefix, cfg.Redis.TTL))
	}
	if cfg.Postgres.Enabled {
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return fail("postgres", err)
		}
		sinks = append(sinks, NewPostgres(client))
	}

	opts = append([]Option{
		WithBackoff(resilience.Backoff{
			MaxAttempts:  cfg.Retry.MaxAttempts,
			InitialDelay: cfg.Retry.InitialDelay,
			MaxDelay:     cfg.Retry.MaxDelay,
		}),
		WithTimeout(cfg.Timeout),
	}, opts...)
	return NewFanout(sinks, opts...), nil
}
