// Command rentscout walks every pickup/return date pair in a window, asks
// Hertz for a quote on each, and reports the cheapest rentals.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/rentscout/engine/combos"
	"github.com/WessleyAI/rentscout/engine/domain"
	"github.com/WessleyAI/rentscout/engine/hertz"
	"github.com/WessleyAI/rentscout/engine/offer"
	"github.com/WessleyAI/rentscout/engine/report"
	"github.com/WessleyAI/rentscout/engine/search"
	"github.com/WessleyAI/rentscout/pkg/metrics"
	"github.com/WessleyAI/rentscout/pkg/natsutil"
)

// Config holds flag and environment based configuration.
type Config struct {
	Search domain.SearchConfig

	Pacer       string
	Timeout     time.Duration
	OutputDir   string
	LogFormat   string
	LogLevel    string
	ControlAddr string
	NATSURL     string
}

func loadConfig(args []string, stderr io.Writer) (Config, error) {
	var cfg Config
	s := &cfg.Search

	fs := flag.NewFlagSet("rentscout", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&s.PickupStart, "pickup-start", "", "first pickup date (dd/mm/yyyy)")
	fs.StringVar(&s.PickupEnd, "pickup-end", "", "last pickup date (dd/mm/yyyy)")
	fs.StringVar(&s.ReturnStart, "return-start", "", "first return date (dd/mm/yyyy)")
	fs.StringVar(&s.ReturnEnd, "return-end", "", "last return date (dd/mm/yyyy)")
	fs.IntVar(&s.MinDays, "min-days", 12, "minimum rental length in days")
	fs.DurationVar(&s.Delay, "delay", 2*time.Second, "pause between requests")

	fs.StringVar(&s.Endpoint, "endpoint", envOr("RENTSCOUT_ENDPOINT", hertz.DefaultEndpoint), "reservation endpoint")
	fs.StringVar(&s.PickupLocation, "location", envOr("RENTSCOUT_LOCATION", "DWHX90"), "pickup location code")
	fs.StringVar(&s.PickupLocationName, "location-name", "Darmstadt - Hauptbahnhof", "pickup location display name")
	fs.StringVar(&s.ReturnLocation, "return-location", "", "return location code (defaults to pickup)")
	fs.StringVar(&s.PickupTime, "pickup-time", "12:00", "pickup time (HH:MM)")
	fs.StringVar(&s.ReturnTime, "return-time", "12:00", "return time (HH:MM)")
	fs.StringVar(&s.Age, "age", "25", "driver age")
	fs.StringVar(&s.CDP, "cdp", envOr("RENTSCOUT_CDP", ""), "corporate discount program number")
	fs.StringVar(&s.RateQualifier, "rq", "BEST", "rate qualifier")
	fs.StringVar(&s.DefaultCurrency, "currency", offer.DefaultCurrency, "currency for quotes that carry none")

	fs.StringVar(&cfg.Pacer, "pacer", "fixed", "pacing strategy: fixed or rate")
	fs.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "per-request timeout")
	fs.StringVar(&cfg.OutputDir, "output-dir", ".", "directory for JSON and CSV exports")
	fs.StringVar(&cfg.LogFormat, "log-format", "text", "log format: text or json")
	fs.StringVar(&cfg.LogLevel, "log-level", envOr("LOG_LEVEL", "info"), "log level")
	fs.StringVar(&cfg.ControlAddr, "control-addr", "", "listen address for the control server, empty to disable")
	fs.StringVar(&cfg.NATSURL, "nats-url", envOr("NATS_URL", ""), "NATS server for events and control, empty to disable")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.Pacer != "fixed" && cfg.Pacer != "rate" {
		return Config{}, domain.NewValidationError("pacer", cfg.Pacer, errors.New("must be fixed or rate"))
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

func main() {
	cfg, err := loadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("rentscout exited with error", "err", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for bad input and 1 for anything else.
func exitCode(err error) int {
	if errors.Is(err, domain.ErrInvalidConfig) || errors.Is(err, domain.ErrParse) {
		return 2
	}
	return 1
}

func run(cfg Config, logger *slog.Logger) error {
	if err := domain.ValidateConfig(cfg.Search); err != nil {
		return err
	}
	dates, err := combos.Generate(cfg.Search.PickupStart, cfg.Search.PickupEnd,
		cfg.Search.ReturnStart, cfg.Search.ReturnEnd, cfg.Search.MinDays)
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		logger.Warn("no date combinations match the window", "min_days", cfg.Search.MinDays)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := metrics.New()
	observers := search.Observers{
		search.LogObserver{Log: logger},
		search.NewMetricsObserver(reg),
	}

	// --- Optional NATS connection ---
	var nc *nats.Conn
	if cfg.NATSURL != "" {
		nc, err = nats.Connect(cfg.NATSURL, nats.Name("rentscout"))
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Drain()
		observers = append(observers, search.NewNATSObserver(nc, logger))
	}

	opts := []search.Option{search.WithObserver(observers), search.WithLogger(logger)}
	if cfg.Pacer == "rate" {
		opts = append(opts, search.WithPacer(search.RateLimit(cfg.Search.Delay)))
	}
	searcher := search.New(hertz.NewClient(cfg.Timeout), hertz.Builder{}, opts...)
	r := searcher.Start(cfg.Search, dates)

	logger.Info("search starting",
		"run_id", r.ID,
		"location", cfg.Search.PickupLocationName,
		"pickup", cfg.Search.PickupStart+" - "+cfg.Search.PickupEnd,
		"return", cfg.Search.ReturnStart+" - "+cfg.Search.ReturnEnd,
		"min_days", cfg.Search.MinDays,
		"combinations", len(dates),
		"delay", cfg.Search.Delay,
	)

	if nc != nil {
		subs, err := serveNATSControl(nc, r)
		if err != nil {
			return err
		}
		defer func() {
			for _, s := range subs {
				s.Unsubscribe()
			}
		}()
	}

	// --- Control server ---
	if cfg.ControlAddr != "" {
		srv := &http.Server{
			Addr:         cfg.ControlAddr,
			Handler:      controlHandler(r, reg, logger),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("control server starting", "addr", cfg.ControlAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("control server failed", "err", err)
			}
		}()
		defer func() {
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutCancel()
			srv.Shutdown(shutCtx)
		}()
	}

	// First signal stops after the request in flight, the second aborts it.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for {
			select {
			case <-sigCh:
			case <-ctx.Done():
				return
			}
			if r.Stop() {
				logger.Warn("stop requested, finishing the current request", "run_id", r.ID)
				continue
			}
			logger.Warn("aborting", "run_id", r.ID)
			cancel()
			return
		}
	}()

	rows := r.Wait(ctx)
	rep := report.Summarize(rows)
	fmt.Fprint(os.Stdout, report.RenderMarkdown(rep))

	files, err := writeExports(cfg.OutputDir, rep.Rows, time.Now())
	if err != nil {
		return err
	}
	for _, f := range files {
		logger.Info("results exported", "path", f)
	}

	if nc != nil {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pubCancel()
		msg := search.ReportMessage{RunID: r.ID, Rows: rep.Rows}
		if err := natsutil.Publish(pubCtx, nc, search.SubjectReport, msg); err != nil {
			logger.Warn("publish report", "run_id", r.ID, "err", err)
		}
	}
	return nil
}
