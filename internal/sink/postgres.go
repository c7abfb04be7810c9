package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/postgres"
)

// TxRunner is the part of postgres.Client the sink uses.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx postgres.Execer) error) error
	Ping(ctx context.Context) error
	Close() error
}

const schema = `
CREATE TABLE IF NOT EXISTS search_runs (
	run_id      TEXT PRIMARY KEY,
	mode        TEXT NOT NULL,
	locations   INTEGER NOT NULL,
	words       BIGINT NOT NULL,
	queries     INTEGER NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS search_results (
	run_id   TEXT NOT NULL REFERENCES search_runs(run_id) ON DELETE CASCADE,
	query    TEXT NOT NULL,
	rank     INTEGER NOT NULL,
	location TEXT NOT NULL,
	count    INTEGER NOT NULL,
	score    DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, query, rank)
)`

const (
	insertRun = `INSERT INTO search_runs (run_id, mode, locations, words, queries, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (run_id) DO NOTHING`

	insertResult = `INSERT INTO search_results (run_id, query, rank, location, count, score)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (run_id, query, rank) DO NOTHING`
)

// Postgres stores the run and every ranked result in one transaction, so a
// retried export never leaves a partial run behind.
type Postgres struct {
	db     TxRunner
	logger *slog.Logger
}

func NewPostgres(db TxRunner) *Postgres {
	return &Postgres{db: db, logger: slog.Default().With("component", "sink-postgres")}
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Export(ctx context.Context, run *Run) error {
	rows := 0
	err := p.db.InTx(ctx, func(tx postgres.Execer) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
		s := Summarize(run)
		if _, err := tx.ExecContext(ctx, insertRun,
			s.RunID, s.Mode, s.Locations, s.Words, s.Queries, s.StartedAt, s.FinishedAt,
		); err != nil {
			return fmt.Errorf("inserting run: %w", err)
		}
		for _, query := range run.Queries() {
			for rank, r := range run.Results[query] {
				if _, err := tx.ExecContext(ctx, insertResult,
					run.ID, query, rank+1, r.Location(), r.Count(), r.Score(),
				); err != nil {
					return fmt.Errorf("inserting result for %q: %w", query, err)
				}
				rows++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.logger.Info("run stored", "run_id", run.ID, "result_rows", rows)
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.Ping(ctx) }

func (p *Postgres) Close() error { return p.db.Close() }
