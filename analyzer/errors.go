package analyzer

import (
	"errors"
	"fmt"
)

// ErrorKind classifies analysis failures so callers can distinguish a bad
// input from a slow site without string matching.
type ErrorKind int

const (
	// KindValidation - the input URL was rejected before any network call.
	KindValidation ErrorKind = iota
	// KindTimeout - the primary fetch exceeded its deadline.
	KindTimeout
	// KindFetch - any other network or HTTP failure on the primary fetch.
	KindFetch
	// KindInternal - an unexpected failure during extraction or scoring.
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTimeout:
		return "timeout"
	case KindFetch:
		return "fetch"
	default:
		return "internal"
	}
}

// AnalysisError is the error type returned by Analyze. Auxiliary probe
// failures never produce one; they collapse into defaulted Profile fields.
type AnalysisError struct {
	Kind ErrorKind
	URL  string
	Err  error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error for %s: %v", e.Kind, e.URL, e.Err)
	}
	return fmt.Sprintf("%s error for %s", e.Kind, e.URL)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// ErrKind reports the kind of err if it is (or wraps) an AnalysisError.
func ErrKind(err error) (ErrorKind, bool) {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return 0, false
}

func newError(kind ErrorKind, url string, err error) *AnalysisError {
	return &AnalysisError{Kind: kind, URL: url, Err: err}
}
