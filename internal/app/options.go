package app

import (
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/cli"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/errors"
)

// Command-line flags. Each stage runs only when its flag is present.
const (
	FlagText    = "-text"
	FlagIndex   = "-index"
	FlagCounts  = "-counts"
	FlagQuery   = "-query"
	FlagResults = "-results"
	FlagPartial = "-partial"
	FlagThreads = "-threads"
	FlagConfig  = "-config"
)

// Options is one invocation's resolved stages. An empty path skips its stage.
type Options struct {
	Text    string
	Index   string
	Counts  string
	Query   string
	Results string
	Mode    index.SearchMode
	// Threads is the worker count; 0 runs everything on the calling goroutine.
	Threads int
}

// Threaded reports whether a work queue is used.
func (o Options) Threaded() bool { return o.Threads > 0 }

// OptionsFrom resolves flags against cfg. Output flags without a value use
// cfg.Output; -threads without a positive value uses cfg.Engine.Threads.
func OptionsFrom(args *cli.Args, cfg *config.Config) (Options, error) {
	o := Options{
		Mode: index.ModeFor(args.HasFlag(FlagPartial) || cfg.Engine.Partial),
	}
	if args.HasFlag(FlagText) {
		if o.Text = args.Path(FlagText, ""); o.Text == "" {
			return o, missingValue(FlagText)
		}
	}
	if args.HasFlag(FlagQuery) {
		if o.Query = args.Path(FlagQuery, ""); o.Query == "" {
			return o, missingValue(FlagQuery)
		}
	}
	if args.HasFlag(FlagIndex) {
		o.Index = args.Path(FlagIndex, cfg.Output.Index)
	}
	if args.HasFlag(FlagCounts) {
		o.Counts = args.Path(FlagCounts, cfg.Output.Counts)
	}
	if args.HasFlag(FlagResults) {
		o.Results = args.Path(FlagResults, cfg.Output.Results)
	}
	if args.HasFlag(FlagThreads) {
		if o.Threads = args.Int(FlagThreads, cfg.Engine.Threads); o.Threads <= 0 {
			o.Threads = cfg.Engine.Threads
		}
	}
	return o, nil
}

func missingValue(flag string) error {
	return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage, "%s requires a path", flag)
}
