// Package search runs the sequential pricing loop over date combinations.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/WessleyAI/rentscout/engine/classify"
	"github.com/WessleyAI/rentscout/engine/domain"
	"github.com/WessleyAI/rentscout/engine/offer"
	"github.com/WessleyAI/rentscout/pkg/fn"
)

// DefaultSummaryEvery is how many combinations pass between summaries.
const DefaultSummaryEvery = 10

// Fetcher issues one pricing request.
type Fetcher interface {
	Post(ctx context.Context, endpoint string, body any) classify.FetchOutcome
}

// RequestBuilder builds the request body for one combination.
type RequestBuilder interface {
	Build(cfg domain.SearchConfig, c domain.DateCombination) (any, error)
}

// Searcher runs searches. It holds no per-run state and may start several
// runs, each on its own goroutine.
type Searcher struct {
	fetcher      Fetcher
	builder      RequestBuilder
	pacer        Pacer
	observer     Observer
	log          *slog.Logger
	summaryEvery int
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithPacer overrides the default FixedDelay(cfg.Delay).
func WithPacer(p Pacer) Option { return func(s *Searcher) { s.pacer = p } }

// WithObserver sets the progress observer.
func WithObserver(o Observer) Option { return func(s *Searcher) { s.observer = o } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Searcher) { s.log = l } }

// WithSummaryEvery sets the summary interval. Values below 1 are ignored.
func WithSummaryEvery(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.summaryEvery = n
		}
	}
}

// New creates a Searcher.
func New(f Fetcher, b RequestBuilder, opts ...Option) *Searcher {
	s := &Searcher{
		fetcher:      f,
		builder:      b,
		observer:     Observers(nil),
		log:          slog.Default(),
		summaryEvery: DefaultSummaryEvery,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Progress is a point-in-time view of a run, safe to read from any goroutine.
type Progress struct {
	RunID       string    `json:"run_id"`
	Total       int       `json:"total"`
	Done        int       `json:"done"`
	Success     int       `json:"success"`
	Errors      int       `json:"errors"`
	RateLimited int       `json:"rate_limited"`
	Stopping    bool      `json:"stopping"`
	Finished    bool      `json:"finished"`
	StartedAt   time.Time `json:"started_at,omitzero"`
	Elapsed     string    `json:"elapsed"`
}

// Run is one search over a fixed list of combinations.
type Run struct {
	ID string

	s      *Searcher
	cfg    domain.SearchConfig
	combos []domain.DateCombination
	pacer  Pacer

	// mu orders Stop against the end of the run.
	mu      sync.Mutex
	stopped atomic.Bool
	stopCh  chan struct{}

	started  atomic.Int64 // unix nanos, 0 until Wait begins
	finished atomic.Bool
	done     atomic.Int64
	success  atomic.Int64
	errors   atomic.Int64
	limited  atomic.Int64

	once sync.Once
	rows []domain.ResultRow
}

// Start prepares a run. Nothing is requested until Wait is called.
func (s *Searcher) Start(cfg domain.SearchConfig, combos []domain.DateCombination) *Run {
	p := s.pacer
	if p == nil {
		p = FixedDelay(cfg.Delay)
	}
	return &Run{
		ID:     uuid.NewString(),
		s:      s,
		cfg:    cfg,
		combos: combos,
		pacer:  p,
		stopCh: make(chan struct{}),
	}
}

// Run starts a run and waits for it.
func (s *Searcher) Run(ctx context.Context, cfg domain.SearchConfig, combos []domain.DateCombination) []domain.ResultRow {
	return s.Start(cfg, combos).Wait(ctx)
}

// Stop asks the run to finish after the request in flight. It reports
// whether the request took effect: false once the run has finished or a
// stop was already requested.
func (r *Run) Stop() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished.Load() || r.stopped.Load() {
		return false
	}
	r.stopped.Store(true)
	close(r.stopCh)
	return true
}

// Stopped reports whether Stop took effect.
func (r *Run) Stopped() bool { return r.stopped.Load() }

// Progress returns a snapshot of the run's counters.
func (r *Run) Progress() Progress {
	p := Progress{
		RunID:       r.ID,
		Total:       len(r.combos),
		Done:        int(r.done.Load()),
		Success:     int(r.success.Load()),
		Errors:      int(r.errors.Load()),
		RateLimited: int(r.limited.Load()),
		Stopping:    r.stopped.Load(),
		Finished:    r.finished.Load(),
		Elapsed:     "0s",
	}
	if ns := r.started.Load(); ns != 0 {
		p.StartedAt = time.Unix(0, ns).UTC()
		p.Elapsed = time.Since(p.StartedAt).Round(time.Second).String()
	}
	return p
}

// Wait executes the run on the calling goroutine and returns one row per
// attempted combination, in combination order. Later calls return the same
// rows. Cancelling ctx aborts the request in flight; its combination is
// not recorded.
func (r *Run) Wait(ctx context.Context) []domain.ResultRow {
	r.once.Do(func() { r.rows = r.execute(ctx) })
	return r.rows
}

// attempt is one combination after fetching and classification.
type attempt struct {
	row      domain.ResultRow
	category classify.Category
	duration time.Duration
}

type request struct {
	combo domain.DateCombination
	body  any
}

func (r *Run) stage() fn.Stage[domain.DateCombination, attempt] {
	build := fn.Stage[domain.DateCombination, request](func(_ context.Context, c domain.DateCombination) fn.Result[request] {
		body, err := r.s.builder.Build(r.cfg, c)
		if err != nil {
			return fn.Err[request](fmt.Errorf("build request: %w", err))
		}
		return fn.Ok(request{combo: c, body: body})
	})
	fetch := fn.Stage[request, attempt](func(ctx context.Context, req request) fn.Result[attempt] {
		start := time.Now()
		cl := classify.Classify(r.s.fetcher.Post(ctx, r.cfg.Endpoint, req.body))
		return fn.Ok(attempt{
			row:      r.toRow(req.combo, cl),
			category: cl.Category,
			duration: time.Since(start),
		})
	})
	return fn.TracedStage("search.combination", fn.Recover(fn.Then(build, fetch)))
}

func (r *Run) currency() string {
	if r.cfg.DefaultCurrency != "" {
		return r.cfg.DefaultCurrency
	}
	return offer.DefaultCurrency
}

func (r *Run) toRow(c domain.DateCombination, cl classify.Classified) domain.ResultRow {
	if !cl.Success {
		if cl.Category == classify.CategoryTransport {
			return domain.ErrorRow(c, r.currency(), domain.TransportFailure(cl.ErrorKind, cl.Message))
		}
		return domain.ErrorRow(c, r.currency(),
			domain.HTTPFailure(cl.Status, cl.StatusText, cl.Headers, cl.RateLimited()))
	}
	if o := offer.ExtractCheapest(cl.Body, offer.Options{DefaultCurrency: r.cfg.DefaultCurrency}); o != nil {
		return domain.PricedRow(c, *o, cl.Status)
	}
	msg := ""
	if cl.Category == classify.CategoryNoData {
		msg = cl.Message
	}
	return domain.ErrorRow(c, r.currency(), domain.NoOffers(cl.Status, msg, cl.Headers))
}

func (r *Run) execute(ctx context.Context) []domain.ResultRow {
	log := r.s.log.With("run_id", r.ID)
	total := len(r.combos)
	start := time.Now()
	r.started.Store(start.UnixNano())
	log.Info("search started", "combinations", total, "endpoint", r.cfg.Endpoint, "location", r.cfg.PickupLocation)

	process := r.stage()
	rows := make([]domain.ResultRow, 0, total)
	for i, c := range r.combos {
		if r.stopped.Load() {
			log.Warn("stop requested, finishing early", "recorded", len(rows), "total", total)
			break
		}
		if err := ctx.Err(); err != nil {
			log.Warn("search aborted", "recorded", len(rows), "error", err)
			break
		}

		res := process(ctx, c)
		if ctx.Err() != nil {
			// Hard abort while the request was in flight.
			log.Warn("search aborted", "recorded", len(rows), "error", ctx.Err())
			break
		}
		a, err := res.Unwrap()
		if err != nil {
			log.Error("unexpected error", "combination", c.String(), "error", err)
			a = attempt{row: domain.ErrorRow(c, r.currency(), domain.Unexpected(err))}
		}
		rows = append(rows, a.row)
		r.record(a.row)

		r.notify(log, "combination", func() {
			r.s.observer.OnCombination(ctx, ProgressEvent{
				RunID:    r.ID,
				Index:    len(rows),
				Total:    total,
				Row:      a.row,
				Category: a.category,
				Duration: a.duration,
			})
		})
		if len(rows)%r.s.summaryEvery == 0 && len(rows) < total {
			ev := r.summary(start, false)
			r.notify(log, "summary", func() { r.s.observer.OnSummary(ctx, ev) })
		}

		if i < total-1 && !r.stopped.Load() {
			r.pacer.Pace(ctx, r.stopCh)
		}
	}

	r.mu.Lock()
	r.finished.Store(true)
	r.mu.Unlock()

	final := r.summary(start, true)
	r.notify(log, "summary", func() { r.s.observer.OnSummary(ctx, final) })
	return rows
}

// notify runs one observer dispatch. A panicking observer is logged and
// the run carries on.
func (r *Run) notify(log *slog.Logger, event string, dispatch func()) {
	defer func() {
		if v := recover(); v != nil {
			log.Error("observer panicked", "event", event, "panic", fmt.Sprint(v))
		}
	}()
	dispatch()
}

func (r *Run) record(row domain.ResultRow) {
	r.done.Add(1)
	if row.Priced() {
		r.success.Add(1)
		return
	}
	r.errors.Add(1)
	if row.Error != nil && row.Error.RateLimited {
		r.limited.Add(1)
	}
}

func (r *Run) summary(start time.Time, final bool) SummaryEvent {
	done := int(r.done.Load())
	total := len(r.combos)
	elapsed := time.Since(start)
	return SummaryEvent{
		RunID:              r.ID,
		Done:               done,
		Total:              total,
		SuccessCount:       int(r.success.Load()),
		ErrorCount:         int(r.errors.Load()),
		RateLimitWarnings:  int(r.limited.Load()),
		Elapsed:            elapsed,
		EstimatedRemaining: EstimateRemaining(elapsed, done, total),
		Final:              final,
		Stopped:            final && r.stopped.Load(),
	}
}

// EstimateRemaining projects the time left from the average time per
// recorded combination so far.
func EstimateRemaining(elapsed time.Duration, done, total int) time.Duration {
	if done <= 0 || total <= done {
		return 0
	}
	return elapsed / time.Duration(done) * time.Duration(total-done)
}
