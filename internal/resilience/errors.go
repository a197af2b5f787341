// Package resilience classifies pipeline failures and provides the opt-in
// retry used at the orchestrator boundary.
package resilience

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"syscall"
)

// Kind names a terminal failure category of a pipeline invocation.
type Kind string

const (
	KindInvalidInput          Kind = "invalid_input"
	KindFetchFailed           Kind = "fetch_failed"
	KindConfiguration         Kind = "configuration_error"
	KindUnparsableModelOutput Kind = "unparsable_model_output"
)

// StatusUnknown is reported by fetch failures that never received a response.
const StatusUnknown = "unknown"

// Error is a categorized pipeline failure. Status is only meaningful for
// KindFetchFailed and holds the HTTP status code or StatusUnknown.
type Error struct {
	Kind   Kind
	Status string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Status != "" {
		fmt.Fprintf(&b, " (status %s)", e.Status)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by a fetch failure, or 0.
func (e *Error) StatusCode() int {
	code, err := strconv.Atoi(e.Status)
	if err != nil {
		return 0
	}
	return code
}

// InvalidInput reports a missing or malformed caller-supplied value.
func InvalidInput(msg string, err error) *Error {
	return &Error{Kind: KindInvalidInput, Msg: msg, Err: err}
}

// FetchFailed reports a page fetch that failed. statusCode is 0 when no
// response was received.
func FetchFailed(statusCode int, err error) *Error {
	status := StatusUnknown
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	return &Error{Kind: KindFetchFailed, Status: status, Err: err}
}

// ConfigurationError reports missing configuration such as a model credential.
func ConfigurationError(msg string) *Error {
	return &Error{Kind: KindConfiguration, Msg: msg}
}

// UnparsableModelOutput reports a model response that could not be
// reconciled into a report.
func UnparsableModelOutput(msg string, err error) *Error {
	return &Error{Kind: KindUnparsableModelOutput, Msg: msg, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err's chain carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsTransient reports whether err is worth retrying: a fetch failure with a
// transient HTTP status, or a network-level timeout/reset. Invalid input,
// configuration and model-output failures are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var e *Error
	if errors.As(err, &e) {
		if e.Kind != KindFetchFailed {
			return false
		}
		if code := e.StatusCode(); code > 0 {
			return IsTransientHTTPStatus(code)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsTransientHTTPStatus returns true for status codes that are safe to retry.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
