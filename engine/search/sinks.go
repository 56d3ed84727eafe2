package search

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/WessleyAI/rentscout/engine/domain"
	"github.com/WessleyAI/rentscout/pkg/metrics"
	"github.com/WessleyAI/rentscout/pkg/natsutil"
)

// MetricsObserver records run progress in a metrics registry.
type MetricsObserver struct {
	reg *metrics.Registry

	mu      sync.Mutex
	best    float64
	hasBest bool
}

// NewMetricsObserver creates a MetricsObserver backed by reg.
func NewMetricsObserver(reg *metrics.Registry) *MetricsObserver {
	return &MetricsObserver{reg: reg}
}

func (m *MetricsObserver) OnCombination(_ context.Context, e ProgressEvent) {
	outcome := "priced"
	if e.Row.Error != nil {
		outcome = string(e.Row.Error.Kind)
	}
	m.reg.Counter(metrics.WithLabels("rentscout_rows_total", "outcome", outcome),
		"Recorded combinations by outcome").Inc()
	if e.Row.Error != nil && e.Row.Error.RateLimited {
		m.reg.Counter("rentscout_rate_limited_total", "Responses with status 429 or 503").Inc()
	}
	m.reg.Histogram("rentscout_request_duration_seconds", "Pricing request latency", nil).
		ObserveDuration(e.Duration)
	m.reg.Gauge("rentscout_progress_done", "Combinations recorded so far").Set(float64(e.Index))
	m.reg.Gauge("rentscout_progress_total", "Combinations in the run").Set(float64(e.Total))

	if e.Row.Priced() {
		m.mu.Lock()
		if !m.hasBest || *e.Row.PricePerDay < m.best {
			m.best, m.hasBest = *e.Row.PricePerDay, true
			m.reg.Gauge("rentscout_best_price_per_day", "Lowest price per day seen").Set(m.best)
		}
		m.mu.Unlock()
	}
}

func (m *MetricsObserver) OnSummary(_ context.Context, e SummaryEvent) {
	m.reg.Gauge("rentscout_elapsed_seconds", "Run time so far").Set(e.Elapsed.Seconds())
	m.reg.Gauge("rentscout_estimated_remaining_seconds", "Estimated time to finish").
		Set(e.EstimatedRemaining.Seconds())
}

// NATS subjects for run events.
const (
	SubjectProgress = "rentscout.progress"
	SubjectSummary  = "rentscout.summary"
	SubjectReport   = "rentscout.report"

	// Request/reply subjects answered by a running search.
	SubjectControlProgress = "rentscout.control.progress"
	SubjectControlStop     = "rentscout.control.stop"
)

// NATSObserver publishes events as JSON. Publish failures are logged and
// never interrupt the run.
type NATSObserver struct {
	pub natsutil.Publisher
	log *slog.Logger
}

// NewNATSObserver creates a NATSObserver. A nil logger discards failures.
func NewNATSObserver(pub natsutil.Publisher, log *slog.Logger) *NATSObserver {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &NATSObserver{pub: pub, log: log}
}

func (n *NATSObserver) OnCombination(ctx context.Context, e ProgressEvent) {
	if err := natsutil.Publish(ctx, n.pub, SubjectProgress, e); err != nil {
		n.log.WarnContext(ctx, "publish progress", "run_id", e.RunID, "error", err)
	}
}

func (n *NATSObserver) OnSummary(ctx context.Context, e SummaryEvent) {
	if err := natsutil.Publish(ctx, n.pub, SubjectSummary, e); err != nil {
		n.log.WarnContext(ctx, "publish summary", "run_id", e.RunID, "error", err)
	}
}

// ReportMessage is published on SubjectReport when a run ends.
type ReportMessage struct {
	RunID string             `json:"run_id"`
	Rows  []domain.ResultRow `json:"rows"`
}

// StopReply answers a stop request. Accepted is false when the run had
// already finished or was already stopping.
type StopReply struct {
	RunID    string `json:"run_id"`
	Accepted bool   `json:"accepted"`
}
