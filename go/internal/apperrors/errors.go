// Package apperrors carries the machine-distinguishable error kinds the API
// layer maps to transport status codes.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers.
type Kind int

const (
	// KindInternal is a storage or infrastructure failure. The message shown
	// to callers is generic; the cause stays in logs.
	KindInternal Kind = iota
	// KindValidation is malformed input, safe to show verbatim.
	KindValidation
	// KindConflict is a business-rule conflict (duplicate name, full league).
	KindConflict
	// KindNotFound means a referenced entity does not exist.
	KindNotFound
	// KindPermission means the actor lacks the required role.
	KindPermission
	// KindInvalidState means the operation is not allowed in the entity's
	// current lifecycle state.
	KindInvalidState
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission"
	case KindInvalidState:
		return "invalid_state"
	default:
		return "internal"
	}
}

// Error is a kinded error with a caller-facing message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is what an API layer should surface. Internal errors collapse to a
// generic message so storage details never leak.
func (e *Error) Message() string {
	if e.Kind == KindInternal {
		return "an internal error occurred"
	}
	return e.Msg
}

// New creates a kinded error.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates a kinded error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Internal wraps a storage/infrastructure failure.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
