package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

// Kind is an enumerable failure category. Classification drives the
// retry decision: transient kinds are worth re-attempting, Validation
// and Internal never are.
type Kind int

const (
	// KindUnknown marks an unclassified failure.
	KindUnknown Kind = iota
	// KindConnectivity marks connection failures (refused, reset, DNS).
	KindConnectivity
	// KindTimeout marks deadline and network timeouts.
	KindTimeout
	// KindRateLimit marks throttling by the remote service.
	KindRateLimit
	// KindTransient marks other failures expected to clear on their own.
	KindTransient
	// KindValidation marks malformed input or a rejected request.
	// Retrying cannot change the outcome.
	KindValidation
	// KindInternal marks programming or logic errors on our side.
	KindInternal
)

// String returns the category name.
func (k Kind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindTimeout:
		return "timeout"
	case KindRateLimit:
		return "rate_limit"
	case KindTransient:
		return "transient"
	case KindValidation:
		return "validation"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error tags an underlying failure with its Kind. Operations wrap the
// errors they produce so the classifier can match on the tag instead of
// an open-ended error hierarchy.
type Error struct {
	Kind Kind
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Connectivity tags err as a connection failure.
func Connectivity(err error) error { return &Error{Kind: KindConnectivity, Err: err} }

// Timeout tags err as a timeout.
func Timeout(err error) error { return &Error{Kind: KindTimeout, Err: err} }

// RateLimit tags err as remote throttling.
func RateLimit(err error) error { return &Error{Kind: KindRateLimit, Err: err} }

// Transient tags err as a generic transient failure.
func Transient(err error) error { return &Error{Kind: KindTransient, Err: err} }

// Validation tags err as malformed input. Always fatal to a retry loop.
func Validation(err error) error { return &Error{Kind: KindValidation, Err: err} }

// Internal tags err as a programming error. Always fatal to a retry loop.
func Internal(err error) error { return &Error{Kind: KindInternal, Err: err} }

// KindOf resolves the failure category of err. Tagged errors report
// their own kind; for everything else a best effort is made from the
// stdlib error types.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return KindConnectivity
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindConnectivity
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnectivity
	}

	return KindUnknown
}

// DefaultRetryable is the broad stance used when a policy carries no
// predicate: every failure is retryable except validation failures,
// internal errors, and context cancellation.
func DefaultRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch KindOf(err) {
	case KindValidation, KindInternal:
		return false
	default:
		return true
	}
}

// TransientOnly is a narrow predicate for call sites with strict
// classification: only explicitly transient categories are retried.
func TransientOnly(err error) bool {
	switch KindOf(err) {
	case KindConnectivity, KindTimeout, KindRateLimit, KindTransient:
		return true
	default:
		return false
	}
}
