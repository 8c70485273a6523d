// Package outcome models results that may have fallen back to a default.
//
// An [Outcome] carries either a value or a tagged failure [Reason] plus the
// underlying error. Callers choose the fallback explicitly with [Outcome.OrElse]
// so the branch that fired stays observable in logs and tests.
package outcome

import "fmt"

// Reason tags why a collaborator call did not produce a usable value.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonMissingCredential  Reason = "missing_credential"
	ReasonUnavailable        Reason = "collaborator_unavailable"
	ReasonMalformedResponse  Reason = "malformed_response"
	ReasonRemoteScanFallback Reason = "remote_scan_fallback"
)

// Outcome is a value or a failure reason.
type Outcome[T any] struct {
	value  T
	reason Reason
	err    error
}

// Ok wraps a successful value.
func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{value: v}
}

// Fail records a failure. A nil err is replaced by one describing reason.
func Fail[T any](reason Reason, err error) Outcome[T] {
	if reason == ReasonNone {
		reason = ReasonUnavailable
	}
	if err == nil {
		err = fmt.Errorf("%s", reason)
	}
	return Outcome[T]{reason: reason, err: err}
}

// OK reports whether the outcome holds a value.
func (o Outcome[T]) OK() bool { return o.err == nil }

// Reason returns the failure tag, or ReasonNone on success.
func (o Outcome[T]) Reason() Reason { return o.reason }

// Err returns the underlying failure, or nil on success.
func (o Outcome[T]) Err() error { return o.err }

// Value returns the value and whether it is valid.
func (o Outcome[T]) Value() (T, bool) { return o.value, o.OK() }

// OrElse returns the value, or fallback when the outcome failed.
func (o Outcome[T]) OrElse(fallback T) T {
	if o.OK() {
		return o.value
	}
	return fallback
}

// OrElseFunc is OrElse with a lazily computed fallback that sees the failure.
func (o Outcome[T]) OrElseFunc(fallback func(Reason, error) T) T {
	if o.OK() {
		return o.value
	}
	return fallback(o.reason, o.err)
}
