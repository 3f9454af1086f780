// Package apperror defines the error kinds surfaced by the ingestion pipeline
// and its entry points.
package apperror

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	KindDecode            Kind = "decode_error"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindEmptyAudio        Kind = "empty_audio"
	KindInference         Kind = "inference_error"
	KindMissingField      Kind = "missing_field"
	KindPersistence       Kind = "persistence_error"
	KindSummaryService    Kind = "summary_service_error"

	// KindInternal is reported for errors that carry no kind.
	KindInternal Kind = "internal_error"
)

// Error is an error tagged with a Kind.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags err with kind. If err already carries a kind it is kept as the
// cause, and the outer kind wins.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain,
// or KindInternal if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// MessageOf returns the human-readable message of the outermost *Error,
// or err.Error() for untyped errors.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		return e.Message
	}
	return err.Error()
}
