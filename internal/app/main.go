package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/cli"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/sink"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/metrics"
)

// Main runs the command line in argv and returns the process exit code. The
// config file comes from -config, falling back to $SP_CONFIG.
func Main(ctx context.Context, argv []string) int {
	args := cli.Parse(argv)

	cfg, err := config.Load(args.Path(FlagConfig, os.Getenv("SP_CONFIG")))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return apperrors.ExitUsage
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("arguments parsed", "args", args.Format())

	opts, err := OptionsFrom(args, cfg)
	if err != nil {
		slog.Error("invalid arguments", "error", err)
		return apperrors.ExitCode(err)
	}

	m := metrics.New(nil)
	var fanout *sink.Fanout
	if cfg.Sinks.AnyEnabled() {
		fanout, err = sink.Open(ctx, cfg.Sinks, sink.WithMetrics(m))
		if err != nil {
			slog.Error("failed to open sinks", "error", err)
			return apperrors.ExitCode(err)
		}
		defer func() {
			if err := fanout.Close(); err != nil {
				slog.Warn("closing sinks", "error", err)
			}
		}()
	}

	if err := New(cfg, opts, m, fanout).Run(ctx); err != nil {
		return apperrors.ExitCode(err)
	}
	return apperrors.ExitOK
}
