package domain

import (
	"errors"
	"fmt"
)

// UpstreamError represents a failed call to an external quote source.
type UpstreamError struct {
	Source     string // e.g. "yahoo_chart", "yahoo_quote"
	Op         string // Operation that failed (e.g., "request", "decode")
	StatusCode int    // HTTP status when the server answered
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Source, e.Op, e.StatusCode, e.Err)
	}
	return e.Source + " " + e.Op + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError wraps err with the source and operation that produced it.
func NewUpstreamError(source, op string, err error) *UpstreamError {
	return &UpstreamError{Source: source, Op: op, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrEmptyResponse is returned when an upstream answered without usable data.
	ErrEmptyResponse = errors.New("empty response")

	// ErrUnexpectedStatus is wrapped by UpstreamError for non-200 answers.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrUnknownTicker is returned when a ticker is not in the catalog.
	ErrUnknownTicker = errors.New("unknown ticker")

	// ErrInvalidInput is returned by calculators for out-of-range inputs.
	ErrInvalidInput = errors.New("invalid input")
)
