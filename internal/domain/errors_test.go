package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpstreamError(t *testing.T) {
	baseErr := errors.New("connection refused")

	t.Run("without status", func(t *testing.T) {
		err := NewUpstreamError("yahoo_quote", "request", baseErr)

		assert.Equal(t, "yahoo_quote request: connection refused", err.Error())
		assert.ErrorIs(t, err, baseErr)
	})

	t.Run("with status", func(t *testing.T) {
		err := &UpstreamError{Source: "yahoo_chart", Op: "request", StatusCode: 429, Err: ErrUnexpectedStatus}

		assert.Equal(t, "yahoo_chart request: status 429: unexpected status", err.Error())
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})

	t.Run("errors.As through wrapping", func(t *testing.T) {
		wrapped := errors.Join(errors.New("outer"), NewUpstreamError("yahoo_quote", "decode", ErrEmptyResponse))

		var ue *UpstreamError
		assert.True(t, errors.As(wrapped, &ue))
		assert.Equal(t, "decode", ue.Op)
	})
}

func TestConfigError(t *testing.T) {
	baseErr := errors.New("missing value")
	err := &ConfigError{Field: "quotes.ttl_sec", Err: baseErr}

	assert.Equal(t, "config error [quotes.ttl_sec]: missing value", err.Error())
	assert.ErrorIs(t, err, baseErr)
}
