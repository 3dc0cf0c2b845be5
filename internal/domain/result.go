package domain

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned when an authenticated endpoint is called without a token
var ErrNoSession = errors.New("no session token")

// FailureKind classifies why data is unavailable
type FailureKind string

const (
	FailureNetwork         FailureKind = "network"
	FailureStatus          FailureKind = "status"
	FailureMalformed       FailureKind = "malformed"
	FailureUnauthenticated FailureKind = "unauthenticated"
)

// Failure describes an unavailable value
type Failure struct {
	Kind     FailureKind
	Endpoint string
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Endpoint, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Result carries either a value fetched from the backend or the reason it is unknown.
// Callers must not read a failed result as a zero value.
type Result[T any] struct {
	value   T
	failure *Failure
}

// Ok wraps a successfully fetched value
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail builds a failed result
func Fail[T any](kind FailureKind, endpoint string, err error) Result[T] {
	return Result[T]{failure: &Failure{Kind: kind, Endpoint: endpoint, Err: err}}
}

// OK reports whether the value is known
func (r Result[T]) OK() bool {
	return r.failure == nil
}

// Get returns the value and whether it is known
func (r Result[T]) Get() (T, bool) {
	return r.value, r.failure == nil
}

// OrElse returns the value, or def when unknown
func (r Result[T]) OrElse(def T) T {
	if r.failure != nil {
		return def
	}
	return r.value
}

// Failure returns the failure, nil on success
func (r Result[T]) Failure() *Failure {
	return r.failure
}

// Err returns the failure as an error, nil on success
func (r Result[T]) Err() error {
	if r.failure == nil {
		return nil
	}
	return r.failure
}
