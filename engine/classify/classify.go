package classify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Category is the outcome taxonomy.
type Category string

const (
	CategoryData        Category = "data"
	CategoryNoData      Category = "no_data"
	CategoryRateLimited Category = "rate_limited"
	CategoryHTTPError   Category = "http_error"
	CategoryTransport   Category = "transport"
)

// Classified is the inspected form of a FetchOutcome.
type Classified struct {
	Success    bool
	Category   Category
	Status     int
	StatusText string
	Headers    map[string]string
	Body       any

	// Set when Success is false, or for CategoryNoData.
	ErrorKind string
	Message   string
}

// RateLimited reports whether the upstream signalled throttling.
func (c Classified) RateLimited() bool { return c.Category == CategoryRateLimited }

// RelevantHeaders is the allow-list of headers kept for operator visibility.
var RelevantHeaders = []string{
	"retry-after",
	"x-ratelimit-limit",
	"x-ratelimit-remaining",
	"x-ratelimit-reset",
	"x-rate-limit-limit",
	"x-rate-limit-remaining",
	"x-rate-limit-reset",
	"ratelimit-limit",
	"ratelimit-remaining",
	"ratelimit-reset",
	"x-request-id",
	"x-response-time",
	"date",
	"server",
}

// IsRateLimitStatus reports whether status is treated as a throttling signal.
func IsRateLimitStatus(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// Classify inspects one outcome. Non-2xx statuses are returned as data,
// never as errors.
func Classify(outcome FetchOutcome) Classified {
	switch o := outcome.(type) {
	case OK:
		return classifyOK(o)
	case HTTPError:
		c := Classified{
			Category:   CategoryHTTPError,
			Status:     o.Status,
			StatusText: o.StatusText,
			Headers:    ExtractHeaders(o.Header),
			ErrorKind:  "http",
			Message:    fmt.Sprintf("HTTP %d %s", o.Status, o.StatusText),
		}
		if c.StatusText == "" {
			c.StatusText = http.StatusText(o.Status)
		}
		if IsRateLimitStatus(o.Status) {
			c.Category = CategoryRateLimited
		}
		return c
	case TransportError:
		return Classified{
			Category:  CategoryTransport,
			ErrorKind: o.Kind,
			Message:   o.Message,
		}
	default:
		return Classified{
			Category:  CategoryTransport,
			ErrorKind: TransportNetwork,
			Message:   fmt.Sprintf("unknown outcome %T", outcome),
		}
	}
}

func classifyOK(o OK) Classified {
	c := Classified{
		Success:  true,
		Category: CategoryData,
		Status:   o.Status,
		Headers:  ExtractHeaders(o.Header),
	}
	if o.Status < 200 || o.Status > 299 {
		// A misbuilt OK is still a failed request.
		c.Success = false
		c.Category = CategoryHTTPError
		c.ErrorKind = "http"
		c.StatusText = http.StatusText(o.Status)
		c.Message = fmt.Sprintf("HTTP %d", o.Status)
		return c
	}

	trimmed := bytes.TrimSpace(o.Body)
	if len(trimmed) == 0 {
		c.Category = CategoryNoData
		c.Message = "empty response body"
		return c
	}

	var body any
	if err := json.Unmarshal(trimmed, &body); err != nil {
		c.Category = CategoryNoData
		c.Message = fmt.Sprintf("response body is not JSON: %v", err)
		return c
	}
	c.Body = body
	return c
}

// ExtractHeaders copies the allow-listed headers present in h, keyed by
// their lower-case names. Keys match case-insensitively whether or not h
// was canonicalized; values are kept verbatim.
func ExtractHeaders(h http.Header) map[string]string {
	out := make(map[string]string)
	for _, name := range RelevantHeaders {
		if v := headerValue(h, name); v != "" {
			out[name] = v
		}
	}
	return out
}

// headerValue returns the first value stored under name in any letter case.
// The canonical key wins over other spellings.
func headerValue(h http.Header, name string) string {
	if v := h.Get(name); v != "" {
		return v
	}
	for k, vs := range h {
		if len(vs) > 0 && vs[0] != "" && strings.EqualFold(k, name) {
			return vs[0]
		}
	}
	return ""
}

// firstOf returns the first present value among synonym header names.
func firstOf(headers map[string]string, names ...string) (string, bool) {
	for _, n := range names {
		if v, ok := headers[n]; ok {
			return v, true
		}
	}
	return "", false
}

// RateLimitInfo renders operator hints from captured headers.
func RateLimitInfo(headers map[string]string) []string {
	var info []string

	if v, ok := headers["retry-after"]; ok {
		info = append(info, fmt.Sprintf("Retry after: %s seconds", v))
	}

	remaining, hasRemaining := firstOf(headers, "x-ratelimit-remaining", "x-rate-limit-remaining", "ratelimit-remaining")
	limit, hasLimit := firstOf(headers, "x-ratelimit-limit", "x-rate-limit-limit", "ratelimit-limit")
	switch {
	case hasRemaining && hasLimit:
		info = append(info, fmt.Sprintf("Rate limit: %s/%s remaining", remaining, limit))
	case hasRemaining:
		info = append(info, fmt.Sprintf("Requests remaining: %s", remaining))
	}

	if reset, ok := firstOf(headers, "x-ratelimit-reset", "x-rate-limit-reset", "ratelimit-reset"); ok {
		if epoch, err := strconv.ParseInt(reset, 10, 64); err == nil {
			info = append(info, "Reset at: "+time.Unix(epoch, 0).UTC().Format(time.RFC3339))
		} else {
			info = append(info, "Reset: "+reset)
		}
	}

	if id, ok := headers["x-request-id"]; ok {
		info = append(info, "Request ID: "+id)
	}
	return info
}
