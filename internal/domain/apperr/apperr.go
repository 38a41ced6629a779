// Package apperr defines the closed set of error kinds surfaced by the catalog core.
package apperr

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
)

// Kind classifies a failure so callers can branch without inspecting message text.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindForbidden        Kind = "forbidden"
	KindConflict         Kind = "conflict"
	KindBadRequest       Kind = "bad_request"
	KindExhaustedRetries Kind = "exhausted_retries"
	KindInternal         Kind = "internal"
)

// Error carries a Kind, a human-readable message and an optional cause.
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

// Is matches another *Error with the same kind, so sentinel comparisons work
// through eris wrapping.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind && (other.Message == "" || other.Message == e.Message)
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// NotFound reports a missing entity.
func NotFound(format string, args ...any) error {
	return newError(KindNotFound, nil, format, args...)
}

// Forbidden reports an actor lacking rights for the operation.
func Forbidden(format string, args ...any) error {
	return newError(KindForbidden, nil, format, args...)
}

// Conflict reports a uniqueness or state clash, such as a taken slug.
func Conflict(format string, args ...any) error {
	return newError(KindConflict, nil, format, args...)
}

// BadRequest reports invalid input or a disallowed state transition.
func BadRequest(format string, args ...any) error {
	return newError(KindBadRequest, nil, format, args...)
}

// ExhaustedRetries reports a bounded retry loop that found no usable candidate.
func ExhaustedRetries(format string, args ...any) error {
	return newError(KindExhaustedRetries, nil, format, args...)
}

// Internal wraps an unexpected failure. The outermost tag wins, so an
// Internal wrapping a Conflict classifies as Internal.
func Internal(err error, format string, args ...any) error {
	return newError(KindInternal, err, format, args...)
}

// Passthrough returns err unchanged when it already carries a Kind other than
// Internal, otherwise wraps it as Internal.
func Passthrough(err error, format string, args ...any) error {
	if kind := KindOf(err); kind != "" && kind != KindInternal {
		return eris.Wrapf(err, format, args...)
	}
	return Internal(err, format, args...)
}

// KindOf reports the Kind of err. Untagged errors are Internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return KindInternal
}

// MessageOf returns the human-readable message of the outermost tagged error.
func MessageOf(err error) string {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Message
	}
	if err == nil {
		return ""
	}
	return "internal error"
}

// IsKind reports whether err is tagged with kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
