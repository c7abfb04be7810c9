package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"
)

// StartServer serves routes, plus an index page linking them, on port. The
// returned function stops the server.
func StartServer(port int, routes map[string]http.Handler) (shutdown func(context.Context) error) {
	paths := make([]string, 0, len(routes))
	mux := http.NewServeMux()
	for path, h := range routes {
		mux.Handle(path, h)
		paths = append(paths, path)
	}
	sort.Strings(paths)
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		var links strings.Builder
		for _, p := range paths {
			fmt.Fprintf(&links, `<li><a href="%s">%s</a></li>`, p, p)
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body><h1>Search Engine</h1><ul>%s</ul></body></html>`, links.String())
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("metrics server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()
	return server.Shutdown
}
