package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrBreakerOpen is returned while a service's circuit breaker rejects calls.
var ErrBreakerOpen = errors.New("downstream circuit open")

// DownstreamError describes a failed call to a processing tier.
type DownstreamError struct {
	Service    string
	StatusCode int
	Body       string
	Err        error
}

func (e *DownstreamError) Error() string {
	switch {
	case e.StatusCode > 0 && e.Body != "":
		return fmt.Sprintf("%s returned HTTP %d: %s", e.Service, e.StatusCode, e.Body)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s returned HTTP %d", e.Service, e.StatusCode)
	default:
		return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
	}
}

func (e *DownstreamError) Unwrap() error { return e.Err }

// IsTransient reports whether err is worth counting against a circuit
// breaker: timeouts, 5xx, 429 and connection-level failures.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrBreakerOpen) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var de *DownstreamError
	if errors.As(err, &de) && de.StatusCode > 0 {
		return de.StatusCode >= 500 || de.StatusCode == 429
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "eof")
}

// IsFatal reports whether err is a client-side rejection that will fail the
// same way on every attempt.
func IsFatal(err error) bool {
	var de *DownstreamError
	if errors.As(err, &de) && de.StatusCode > 0 {
		return de.StatusCode >= 400 && de.StatusCode < 500 && de.StatusCode != 429
	}
	return false
}
