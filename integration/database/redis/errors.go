package redis

import "errors"

var (
	// ErrEmptyConnectionURL is returned when no connection URL is configured.
	ErrEmptyConnectionURL = errors.New("empty redis connection URL")

	// ErrFailedToParseConnString is returned for a malformed connection URL.
	ErrFailedToParseConnString = errors.New("failed to parse redis connection string")

	// ErrNotReady is returned when redis did not become ready within the
	// configured retry budget.
	ErrNotReady = errors.New("redis did not become ready within the given time period")

	// ErrHealthcheckFailed is returned by the health check function when the
	// ping fails.
	ErrHealthcheckFailed = errors.New("redis healthcheck failed")
)
