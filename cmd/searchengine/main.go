// Command searchengine indexes text files and answers query files against the
// index.
//
//	searchengine -text <path> [-index [file]] [-counts [file]]
//	             [-query <file>] [-results [file]] [-partial] [-threads [n]]
//	             [-config <file>]
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := app.Main(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
