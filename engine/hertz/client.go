package hertz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/WessleyAI/rentscout/engine/classify"
)

// maxBody caps how much of a response is read.
const maxBody = 16 << 20

// Client posts pricing requests. Statuses outside 2xx are reported as
// classify.HTTPError, never as Go errors.
type Client struct {
	client *http.Client
}

// NewClient creates a Client with an instrumented transport. A zero timeout
// leaves requests bounded only by their context.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// NewClientWith wraps an existing http.Client.
func NewClientWith(c *http.Client) *Client {
	return &Client{client: c}
}

// Post sends body as JSON to endpoint and returns the outcome.
func (c *Client) Post(ctx context.Context, endpoint string, body any) classify.FetchOutcome {
	payload, err := json.Marshal(body)
	if err != nil {
		return classify.TransportError{Kind: classify.TransportNetwork, Message: fmt.Sprintf("encode payload: %v", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return classify.TransportError{Kind: classify.TransportNetwork, Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return classify.TransportFromError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return classify.HTTPError{
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			Header:     resp.Header,
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return classify.TransportFromError(fmt.Errorf("read body: %w", err))
	}
	return classify.OK{Status: resp.StatusCode, Header: resp.Header, Body: data}
}

// statusText returns the reason phrase the server sent, falling back to the
// standard text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
