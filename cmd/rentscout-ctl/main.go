// Command rentscout-ctl queries, stops or watches a running search over NATS.
//
//	rentscout-ctl progress
//	rentscout-ctl stop
//	rentscout-ctl watch
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/rentscout/engine/search"
	"github.com/WessleyAI/rentscout/pkg/natsutil"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	url := flag.String("nats-url", envOr("NATS_URL", nats.DefaultURL), "NATS server")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: rentscout-ctl [-nats-url url] progress|stop|watch")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nc, err := nats.Connect(*url, nats.Name("rentscout-ctl"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "nats connect:", err)
		os.Exit(1)
	}
	defer nc.Close()

	if err := dispatch(ctx, nc, flag.Arg(0), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, nc *nats.Conn, cmd string, out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	switch cmd {
	case "progress":
		p, err := natsutil.Request[struct{}, search.Progress](ctx, nc, search.SubjectControlProgress, struct{}{})
		if err != nil {
			return err
		}
		return enc.Encode(p)
	case "stop":
		reply, err := natsutil.Request[struct{}, search.StopReply](ctx, nc, search.SubjectControlStop, struct{}{})
		if err != nil {
			return err
		}
		return enc.Encode(reply)
	case "watch":
		return watch(ctx, nc, out)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

// watch prints summaries until the final one arrives or ctx ends.
func watch(ctx context.Context, nc *nats.Conn, out io.Writer) error {
	final := make(chan struct{})
	sub, err := natsutil.Subscribe(nc, search.SubjectSummary, func(_ context.Context, e search.SummaryEvent) {
		fmt.Fprintf(out, "%s %d/%d ok=%d errors=%d rate_limited=%d eta=%s\n",
			e.RunID, e.Done, e.Total, e.SuccessCount, e.ErrorCount, e.RateLimitWarnings, e.EstimatedRemaining)
		if e.Final {
			select {
			case <-final:
			default:
				close(final)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", search.SubjectSummary, err)
	}
	defer sub.Unsubscribe()

	select {
	case <-final:
	case <-ctx.Done():
	}
	return nil
}
