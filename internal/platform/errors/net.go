package errors

// Network-specific helpers for mapping fetch failures to project ErrorCode and retry semantics

import (
	"context"
	stderrs "errors"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// RetryableStatus reports whether an HTTP response status is worth retrying
func RetryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// FetchStatusCode maps an HTTP response status to an ErrorCode with an ok flag
// !ok means the status is 2xx; caller should not treat it as an error
func FetchStatusCode(status int) (ErrorCode, bool) {
	if status >= 200 && status < 300 {
		return ErrorCodeUnknown, false
	}
	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		return ErrorCodeNotFound, true
	case RetryableStatus(status):
		return ErrorCodeUnavailable, true
	default:
		return ErrorCodeFetch, true
	}
}

// FromHTTPStatus turns a non-2xx response status into an *Error.
// If status is 2xx, returns nil
func FromHTTPStatus(status int, msg string) error {
	code, ok := FetchStatusCode(status)
	if !ok {
		return nil
	}
	return Newf(code, "%s: unexpected status %d", msg, status)
}

// IsTimeout reports whether the root cause is a network timeout
func IsTimeout(err error) bool {
	var ne net.Error
	return stderrs.As(Root(err), &ne) && ne.Timeout()
}

// IsConnectionReset reports whether the root cause is a reset connection
func IsConnectionReset(err error) bool {
	return stderrs.Is(Root(err), syscall.ECONNRESET)
}

// IsConnectionRefused reports whether the root cause is a refused connection
func IsConnectionRefused(err error) bool {
	return stderrs.Is(Root(err), syscall.ECONNREFUSED)
}

// IsRetryable reports whether a fetch error represents a transient condition
// worth retrying. It handles structured *Error codes, typed net errors, and
// the generic text seen from the HTTP transport on broken connections
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Do not retry local cancellations/timeouts; let the caller decide higher-level retries
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Structured errors carrying an explicitly transient code
	if e, ok := As(err); ok && e.code == ErrorCodeUnavailable {
		return true
	}

	// Unwrap to the root cause so we can see the transport error
	root := Root(err)

	var ne net.Error
	if stderrs.As(root, &ne) && ne.Timeout() {
		return true
	}
	if stderrs.Is(root, syscall.ECONNRESET) ||
		stderrs.Is(root, syscall.ECONNREFUSED) ||
		stderrs.Is(root, syscall.EPIPE) {
		return true
	}
	if stderrs.Is(root, io.ErrUnexpectedEOF) {
		return true
	}

	// Fallback: text patterns emitted by the transport on broken or half-open connections
	s := strings.ToLower(root.Error())
	switch {
	case strings.Contains(s, "connection reset by peer"),
		strings.Contains(s, "connection refused"),
		strings.Contains(s, "broken pipe"),
		strings.Contains(s, "unexpected eof"),
		strings.Contains(s, "temporary failure in name resolution"),
		strings.Contains(s, "http2: server sent goaway"),
		strings.Contains(s, "server closed idle connection"):
		return true
	default:
		return false
	}
}
