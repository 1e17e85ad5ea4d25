package ledger

import (
	"errors"
	"fmt"
)

// FailureKind classifies a ledger operation failure. Callers branch on the
// kind; no other error shape crosses the ledger boundary.
type FailureKind string

const (
	// FailureValidation: rejected locally, the store was never contacted.
	FailureValidation FailureKind = "validation"
	// FailureStore: the store rejected or was unreachable during a write.
	FailureStore FailureKind = "store"
	// FailureFetch: the store rejected or was unreachable during a read.
	FailureFetch FailureKind = "fetch"
	// FailureNotFound: the mutation target vanished between load and mutation.
	FailureNotFound FailureKind = "not_found"
)

// Failure is the typed error returned by every ledger operation.
type Failure struct {
	Kind FailureKind
	Op   string
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s failure: %v", f.Op, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func newFailure(kind FailureKind, op string, err error) *Failure {
	return &Failure{Kind: kind, Op: op, Err: err}
}

// AsFailure extracts the typed failure from an operation error.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// KindOf returns the failure kind, or "" for nil and foreign errors.
func KindOf(err error) FailureKind {
	if f, ok := AsFailure(err); ok {
		return f.Kind
	}
	return ""
}
