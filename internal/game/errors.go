package game

import (
	"errors"
	"fmt"
)

// ErrConflict is returned by store implementations when a guarded update
// finds the row already changed by a concurrent writer. Services surface it
// as a KindConflict failure.
var ErrConflict = errors.New("conflict: state changed by a concurrent writer")

type FailureKind string

const (
	KindNotFound     FailureKind = "not-found"
	KindUnauthorized FailureKind = "unauthorized"
	KindInvalidState FailureKind = "invalid-state"
	KindInvalidInput FailureKind = "invalid-input"
	KindConflict     FailureKind = "conflict"
	KindUnexpected   FailureKind = "unexpected"
)

// Failure is the structured error every exposed operation returns on the
// non-success path. Kind drives the caller's response mapping; Reason names
// the specific rule or invariant that failed.
type Failure struct {
	Kind   FailureKind
	Reason string
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Reason, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Reason)
}

func (f *Failure) Unwrap() error { return f.Err }

// Is lets callers branch on kind with errors.Is(err, &Failure{Kind: ...}).
func (f *Failure) Is(target error) bool {
	other, ok := target.(*Failure)
	if !ok {
		return false
	}
	return other.Kind == f.Kind && (other.Reason == "" || other.Reason == f.Reason)
}

// AsFailure extracts a Failure from an error chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func notFoundf(format string, args ...any) *Failure {
	return &Failure{Kind: KindNotFound, Reason: fmt.Sprintf(format, args...)}
}

func unauthorizedf(format string, args ...any) *Failure {
	return &Failure{Kind: KindUnauthorized, Reason: fmt.Sprintf(format, args...)}
}

func invalidStatef(format string, args ...any) *Failure {
	return &Failure{Kind: KindInvalidState, Reason: fmt.Sprintf(format, args...)}
}

func invalidInputf(format string, args ...any) *Failure {
	return &Failure{Kind: KindInvalidInput, Reason: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) *Failure {
	return &Failure{Kind: KindConflict, Reason: fmt.Sprintf(format, args...)}
}

// unexpected wraps an infrastructure error. The cause is never swallowed.
func unexpected(err error, reason string) *Failure {
	return &Failure{Kind: KindUnexpected, Reason: reason, Err: err}
}

// asDomainFailure passes through typed failures, converts store conflicts,
// and wraps everything else as unexpected.
func asDomainFailure(err error, context string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsFailure(err); ok {
		return err
	}
	if errors.Is(err, ErrConflict) {
		return &Failure{Kind: KindConflict, Reason: context, Err: err}
	}
	return unexpected(err, context)
}
