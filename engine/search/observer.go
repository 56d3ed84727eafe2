package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/WessleyAI/rentscout/engine/classify"
	"github.com/WessleyAI/rentscout/engine/domain"
)

// ProgressEvent is emitted once per recorded combination.
type ProgressEvent struct {
	RunID    string            `json:"run_id"`
	Index    int               `json:"index"` // 1-based
	Total    int               `json:"total"`
	Row      domain.ResultRow  `json:"row"`
	Category classify.Category `json:"category,omitempty"`
	Duration time.Duration     `json:"duration"`
}

// SummaryEvent is emitted every few combinations and once when the run ends.
type SummaryEvent struct {
	RunID              string        `json:"run_id"`
	Done               int           `json:"done"`
	Total              int           `json:"total"`
	SuccessCount       int           `json:"success_count"`
	ErrorCount         int           `json:"error_count"`
	RateLimitWarnings  int           `json:"rate_limit_warnings"`
	Elapsed            time.Duration `json:"elapsed"`
	EstimatedRemaining time.Duration `json:"estimated_remaining"`
	Final              bool          `json:"final"`
	Stopped            bool          `json:"stopped,omitempty"`
}

// Observer receives progress from a run. Calls happen on the run's
// goroutine, one at a time.
type Observer interface {
	OnCombination(ctx context.Context, e ProgressEvent)
	OnSummary(ctx context.Context, e SummaryEvent)
}

// Observers fans events out in order.
type Observers []Observer

func (obs Observers) OnCombination(ctx context.Context, e ProgressEvent) {
	for _, o := range obs {
		o.OnCombination(ctx, e)
	}
}

func (obs Observers) OnSummary(ctx context.Context, e SummaryEvent) {
	for _, o := range obs {
		o.OnSummary(ctx, e)
	}
}

// LogObserver writes progress to a structured logger.
type LogObserver struct {
	Log *slog.Logger
}

func (o LogObserver) OnCombination(ctx context.Context, e ProgressEvent) {
	r := e.Row
	attrs := []any{
		"run_id", e.RunID,
		"progress", progressLabel(e.Index, e.Total),
		"pickup", r.Pickup,
		"return", r.Return,
		"days", r.Days,
		"duration", e.Duration.Round(time.Millisecond),
	}
	if r.Priced() {
		o.Log.InfoContext(ctx, "price found", append(attrs,
			"car", r.CarName,
			"total", *r.TotalPrice,
			"per_day", *r.PricePerDay,
			"currency", r.Currency,
			"electric", r.Electric,
		)...)
		return
	}

	rowErr := r.Error
	if rowErr == nil {
		o.Log.WarnContext(ctx, "no price", attrs...)
		return
	}
	attrs = append(attrs, "kind", rowErr.Kind, "error", rowErr.Error())
	if rowErr.Status != 0 {
		attrs = append(attrs, "status", rowErr.Status)
	}
	if info := classify.RateLimitInfo(rowErr.Headers); len(info) > 0 {
		attrs = append(attrs, "rate_limit_info", strings.Join(info, "; "))
	}
	switch {
	case rowErr.RateLimited:
		o.Log.WarnContext(ctx, "rate limited", append(attrs, "headers", rowErr.Headers)...)
	case rowErr.Kind == domain.KindNoOffers:
		o.Log.WarnContext(ctx, "no prices available", attrs...)
	default:
		o.Log.ErrorContext(ctx, "request failed", attrs...)
	}
}

func (o LogObserver) OnSummary(ctx context.Context, e SummaryEvent) {
	attrs := []any{
		"run_id", e.RunID,
		"progress", progressLabel(e.Done, e.Total),
		"elapsed", e.Elapsed.Round(time.Second),
		"estimated_remaining", e.EstimatedRemaining.Round(time.Second),
		"success", e.SuccessCount,
		"errors", e.ErrorCount,
	}
	if e.RateLimitWarnings > 0 {
		attrs = append(attrs, "rate_limit_warnings", e.RateLimitWarnings)
	}
	msg := "search progress"
	switch {
	case e.Final && e.Stopped:
		msg = "search stopped"
	case e.Final:
		msg = "search completed"
	}
	o.Log.InfoContext(ctx, msg, attrs...)
}

func progressLabel(done, total int) string {
	pct := 0.0
	if total > 0 {
		pct = float64(done) / float64(total) * 100
	}
	return fmt.Sprintf("%d/%d (%.1f%%)", done, total, pct)
}
