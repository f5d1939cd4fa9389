// SPDX-License-Identifier: MIT

package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthFailed indicates the server rejected our credentials. Terminal;
	// the caller must re-prompt for a key rather than retry.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrEmptyResponse indicates the server returned no usable payload.
	ErrEmptyResponse = errors.New("empty response")

	// ErrInvalidURL indicates the configured base URL cannot form a request.
	ErrInvalidURL = errors.New("invalid url")
)

// ServerError carries a non-2xx HTTP status. Retry is the caller's decision;
// exponential backoff is recommended for 5xx.
type ServerError struct {
	Code int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: status %d", e.Code)
}

// Retryable reports whether the status is a server-side fault worth retrying.
func (e *ServerError) Retryable() bool { return e.Code >= 500 }

// DecodeError indicates neither response shape matched. Non-retryable for the
// exact request; it signals schema drift upstream. Detail preserves the first
// (direct-shape) decode failure for diagnosability.
type DecodeError struct {
	Operation string
	Detail    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Operation, e.Detail)
}

func (e *DecodeError) Unwrap() error { return e.Detail }

// QueryError carries GraphQL-level errors returned with a 200 status.
// Partial data accompanying them is never surfaced.
type QueryError struct {
	Operation string
	Messages  []string
}

func (e *QueryError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("query %s failed", e.Operation)
	}
	return fmt.Sprintf("query %s failed: %s", e.Operation, e.Messages[0])
}

// NetworkError wraps a transport-level failure. Transient; retryable.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// upstreamFault reports whether err indicates the upstream service itself is
// failing: transport errors and 5xx responses. Auth rejections, client-side
// 4xx and caller cancellation say nothing about server health and must not
// trip the circuit breaker.
func upstreamFault(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var srvErr *ServerError
	return errors.As(err, &srvErr) && srvErr.Retryable()
}
