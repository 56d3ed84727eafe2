package search

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer waits between two consecutive requests. Pace returns early when ctx
// is done or stop is closed.
type Pacer interface {
	Pace(ctx context.Context, stop <-chan struct{})
}

// PacerFunc adapts a function to Pacer.
type PacerFunc func(ctx context.Context, stop <-chan struct{})

func (f PacerFunc) Pace(ctx context.Context, stop <-chan struct{}) { f(ctx, stop) }

type fixedDelay time.Duration

// FixedDelay sleeps d after each request. A zero delay never blocks.
func FixedDelay(d time.Duration) Pacer { return fixedDelay(d) }

func (d fixedDelay) Pace(ctx context.Context, stop <-chan struct{}) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(time.Duration(d))
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	case <-stop:
	}
}

// rateLimit spaces request starts at least one interval apart. Unlike
// FixedDelay, time spent inside the request counts toward the gap.
type rateLimit struct {
	limiter *rate.Limiter
}

// RateLimit returns a token-bucket pacer allowing one request per d.
func RateLimit(d time.Duration) Pacer {
	if d <= 0 {
		return FixedDelay(0)
	}
	l := rate.NewLimiter(rate.Every(d), 1)
	// The first request is issued before any Pace call.
	l.Allow()
	return &rateLimit{limiter: l}
}

func (r *rateLimit) Pace(ctx context.Context, stop <-chan struct{}) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()
	// Wait fails only on cancellation, which the loop checks itself.
	_ = r.limiter.Wait(ctx)
}
