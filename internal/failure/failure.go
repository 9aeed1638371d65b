// Package failure defines the single error value surfaced to callers of a
// bound operation.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind int

const (
	// KindTransport reports a non-success status, an unreadable or
	// undecodable response, or a failure to send the request at all.
	KindTransport Kind = iota + 1
	// KindService reports a non-empty top-level errors list.
	KindService
	// KindMissingField reports that the response data lacks the requested field.
	KindMissingField
	// KindCoercion reports a value that cannot be bound to the declared type.
	KindCoercion
	// KindConfiguration reports a declaration that cannot be bound at all.
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindService:
		return "service"
	case KindMissingField:
		return "missing field"
	case KindCoercion:
		return "coercion"
	case KindConfiguration:
		return "configuration"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the uniform failure of a call. Its message is part of the
// observable contract and is built by the constructors below.
type Error struct {
	Kind    Kind
	Message string
	// Err is the underlying cause, if any. It never contributes to Message.
	Err error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error of kind k with a formatted message.
func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause attached.
func Wrap(k Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...), Err: cause}
}

// Is reports whether err is an *Error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// Status reports a non-success transport status.
func Status(code int, reason string, body []byte) *Error {
	return New(KindTransport, "expected successful status code but got %d %s:\n%s", code, reason, body)
}

// Service reports errors returned by the service for the given request body.
func Service(errorsText string, request []byte) *Error {
	return New(KindService, "errors from service: %s:\n  %s", errorsText, request)
}

// MissingField reports that field is absent from the rendered data.
func MissingField(field, dataText string) *Error {
	return New(KindMissingField, "no data for '%s':\n  %s", field, dataText)
}

// InvalidValue reports a value that does not fit the named type.
func InvalidValue(typeName, location, rendered string) *Error {
	return New(KindCoercion, "invalid %s value for %s: %s", typeName, location, rendered)
}

// ScalarConstruction reports a failed custom scalar construction.
func ScalarConstruction(scalarName, location string, cause error) *Error {
	return Wrap(KindCoercion, cause, "can't create scalar %s value for %s", scalarName, location)
}

// Configuration reports a declaration that cannot be bound.
func Configuration(format string, args ...any) *Error {
	return New(KindConfiguration, format, args...)
}
