package sink

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/kafka"
)

// Publisher is the part of kafka.Producer the sink uses.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
	Ping(ctx context.Context) error
	Close() error
}

// Kafka publishes one event per query followed by a run.complete event, all
// keyed by run so they land on one partition in order.
type Kafka struct {
	publisher Publisher
	logger    *slog.Logger
}

func NewKafka(p Publisher) *Kafka {
	return &Kafka{publisher: p, logger: slog.Default().With("component", "sink-kafka")}
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Export(ctx context.Context, run *Run) error {
	events := make([]kafka.Event, 0, len(run.Results)+1)
	for _, query := range run.Queries() {
		results := run.Results[query]
		if results == nil {
			results = []index.FileResult{}
		}
		events = append(events, kafka.Event{
			Key: run.ID,
			Value: QueryResults{
				Type:    "query.results",
				RunID:   run.ID,
				Query:   query,
				Mode:    run.Mode.String(),
				Results: results,
			},
		})
	}
	events = append(events, kafka.Event{Key: run.ID, Value: Summarize(run)})
	if err := k.publisher.PublishBatch(ctx, events); err != nil {
		return err
	}
	k.logger.Info("run published", "run_id", run.ID, "events", len(events))
	return nil
}

func (k *Kafka) Ping(ctx context.Context) error { return k.publisher.Ping(ctx) }

func (k *Kafka) Close() error { return k.publisher.Close() }
