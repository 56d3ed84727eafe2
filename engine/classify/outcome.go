// Package classify turns the raw result of one pricing request into a small
// outcome taxonomy the search loop can act on.
package classify

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// FetchOutcome is the result of one HTTP call. It is one of OK, HTTPError
// or TransportError.
type FetchOutcome interface {
	fetchOutcome()
}

// OK is a response with a 2xx status.
type OK struct {
	Status int
	Header http.Header
	Body   []byte
}

// HTTPError is a response with a status outside the 2xx range.
type HTTPError struct {
	Status     int
	StatusText string
	Header     http.Header
}

// TransportError is a failure before any response was received.
type TransportError struct {
	Kind    string
	Message string
}

func (OK) fetchOutcome()             {}
func (HTTPError) fetchOutcome()      {}
func (TransportError) fetchOutcome() {}

// Transport failure kinds.
const (
	TransportTimeout    = "timeout"
	TransportDNS        = "dns"
	TransportConnection = "connection"
	TransportCanceled   = "canceled"
	TransportNetwork    = "network"
)

// TransportFromError derives a TransportError from a client error.
func TransportFromError(err error) TransportError {
	return TransportError{Kind: transportKind(err), Message: err.Error()}
}

func transportKind(err error) string {
	var dnsErr *net.DNSError
	var opErr *net.OpError
	var netErr net.Error

	switch {
	case errors.Is(err, context.Canceled):
		return TransportCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return TransportTimeout
	case errors.As(err, &dnsErr):
		if dnsErr.IsTimeout {
			return TransportTimeout
		}
		return TransportDNS
	case errors.As(err, &netErr) && netErr.Timeout():
		return TransportTimeout
	case errors.As(err, &opErr):
		return TransportConnection
	}
	return TransportNetwork
}
