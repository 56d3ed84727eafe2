package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/rentscout/engine/domain"
	"github.com/WessleyAI/rentscout/engine/report"
	"github.com/WessleyAI/rentscout/engine/search"
	"github.com/WessleyAI/rentscout/pkg/metrics"
	"github.com/WessleyAI/rentscout/pkg/mid"
	"github.com/WessleyAI/rentscout/pkg/natsutil"
)

// runControl is the part of a search run the control surfaces need.
type runControl interface {
	Stop() bool
	Progress() search.Progress
}

func controlHandler(r runControl, reg *metrics.Registry, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/progress", handleProgress(r))
	mux.HandleFunc("POST /api/stop", handleStop(r, logger))
	mux.Handle("GET /metrics", reg.Handler())

	return mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.Metrics(reg),
		mid.OTel("rentscout-control"),
	)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleProgress(r runControl) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, r.Progress())
	}
}

// handleStop answers 202 when the stop took effect and 409 when the run
// had already finished or was already stopping.
func handleStop(r runControl, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		p := r.Progress()
		accepted := r.Stop()
		if !accepted {
			writeJSON(w, http.StatusConflict, search.StopReply{RunID: p.RunID})
			return
		}
		logger.WarnContext(req.Context(), "stop requested over http", "run_id", p.RunID)
		writeJSON(w, http.StatusAccepted, search.StopReply{RunID: p.RunID, Accepted: true})
	}
}

// serveNATSControl answers progress and stop requests for r.
func serveNATSControl(nc *nats.Conn, r runControl) ([]*nats.Subscription, error) {
	progress, err := natsutil.Respond(nc, search.SubjectControlProgress,
		func(_ context.Context, _ struct{}) search.Progress { return r.Progress() })
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", search.SubjectControlProgress, err)
	}
	stop, err := natsutil.Respond(nc, search.SubjectControlStop,
		func(_ context.Context, _ struct{}) search.StopReply {
			return search.StopReply{RunID: r.Progress().RunID, Accepted: r.Stop()}
		})
	if err != nil {
		progress.Unsubscribe()
		return nil, fmt.Errorf("subscribe %s: %w", search.SubjectControlStop, err)
	}
	return []*nats.Subscription{progress, stop}, nil
}

// writeExports writes rows as hertz-prices-<millis>.json and .csv into dir
// and returns the paths written.
func writeExports(dir string, rows []domain.ResultRow, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	base := filepath.Join(dir, fmt.Sprintf("hertz-prices-%d", now.UnixMilli()))

	writers := []struct {
		ext   string
		write func(f *os.File) error
	}{
		{".json", func(f *os.File) error { return report.WriteJSON(f, rows) }},
		{".csv", func(f *os.File) error { return report.WriteCSV(f, rows) }},
	}

	var paths []string
	for _, wr := range writers {
		path := base + wr.ext
		f, err := os.Create(path)
		if err != nil {
			return paths, fmt.Errorf("create %s: %w", path, err)
		}
		werr := wr.write(f)
		cerr := f.Close()
		if werr != nil {
			return paths, fmt.Errorf("write %s: %w", path, werr)
		}
		if cerr != nil {
			return paths, fmt.Errorf("close %s: %w", path, cerr)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
