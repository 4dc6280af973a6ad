package apiclient

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a lookup produced no value.
type FailureKind int

const (
	// FailureTransport covers connection errors and non-2xx answers.
	FailureTransport FailureKind = iota + 1
	// FailureEmptyBody means the service answered without a body.
	FailureEmptyBody
	// FailureDecode means the body was not a valid document.
	FailureDecode
)

func (k FailureKind) String() string {
	switch k {
	case FailureTransport:
		return "transport"
	case FailureEmptyBody:
		return "empty body"
	case FailureDecode:
		return "decode"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

var (
	ErrTransport = errors.New("toolhub: transport failure")
	ErrEmptyBody = errors.New("toolhub: empty response body")
	ErrDecode    = errors.New("toolhub: invalid response body")
)

// Failure is returned by Execute and the typed lookups.
type Failure struct {
	Kind   FailureKind
	Method string
	URL    string
	Err    error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s %s: %s", f.Method, f.URL, f.Kind)
	}
	return fmt.Sprintf("%s %s: %s: %v", f.Method, f.URL, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Is matches the sentinel belonging to f.Kind.
func (f *Failure) Is(target error) bool {
	switch f.Kind {
	case FailureTransport:
		return target == ErrTransport
	case FailureEmptyBody:
		return target == ErrEmptyBody
	case FailureDecode:
		return target == ErrDecode
	}
	return false
}
