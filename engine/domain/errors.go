package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for setup failures. These abort a search before any
// request is issued.
var (
	ErrParse          = errors.New("malformed date")
	ErrInvalidConfig  = errors.New("invalid search config")
	ErrMinDays        = errors.New("min days must not be negative")
	ErrNegativeDelay  = errors.New("delay must not be negative")
	ErrMissingField   = errors.New("required field is empty")
	ErrInvalidTime    = errors.New("invalid time of day")
	ErrInvalidAddress = errors.New("invalid endpoint URL")
)

// ParseError reports a date string that does not match DateLayout.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse date %q: %v", e.Input, e.Err)
}

// Is makes errors.Is(err, ErrParse) hold for every ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError wraps a sentinel with context. Every ValidationError
// also matches ErrInvalidConfig.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidConfig }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}

// ErrorKind is the closed set of per-row failure variants.
type ErrorKind string

const (
	KindTransport  ErrorKind = "transport"
	KindHTTP       ErrorKind = "http"
	KindNoOffers   ErrorKind = "no_offers"
	KindUnexpected ErrorKind = "unexpected"
)

// RowError describes why a combination produced no price. Use the
// constructors below; each fills only the fields relevant to its kind.
type RowError struct {
	Kind ErrorKind `json:"kind"`

	Message string `json:"message"`

	// transport
	TransportKind string `json:"transport_kind,omitempty"`

	// http, no_offers
	Status      int               `json:"status,omitempty"`
	StatusText  string            `json:"status_text,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	RateLimited bool              `json:"rate_limited,omitempty"`
}

func (e *RowError) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("HTTP %d %s", e.Status, e.StatusText)
	case KindTransport:
		return fmt.Sprintf("%s: %s", e.TransportKind, e.Message)
	default:
		return e.Message
	}
}

// TransportFailure is a network, DNS or timeout failure; no HTTP status exists.
func TransportFailure(kind, message string) *RowError {
	return &RowError{Kind: KindTransport, TransportKind: kind, Message: message}
}

// HTTPFailure is a non-2xx response.
func HTTPFailure(status int, statusText string, headers map[string]string, rateLimited bool) *RowError {
	return &RowError{
		Kind:        KindHTTP,
		Message:     fmt.Sprintf("HTTP %d", status),
		Status:      status,
		StatusText:  statusText,
		Headers:     headers,
		RateLimited: rateLimited,
	}
}

// NoOffers is a successful response without a usable priced quote.
func NoOffers(status int, message string, headers map[string]string) *RowError {
	if message == "" {
		message = "no prices in response"
	}
	return &RowError{Kind: KindNoOffers, Message: message, Status: status, Headers: headers}
}

// Unexpected is any other fault raised while processing one combination.
func Unexpected(err error) *RowError {
	return &RowError{Kind: KindUnexpected, Message: err.Error()}
}
