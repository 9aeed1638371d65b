package typesafe

import "github.com/ggoodman/typesafe-graphql-go/internal/failure"

// Error is the single failure value returned by bound operations and by
// Bind. Its message is stable; use Kind, errors.As or IsKind to classify it
// and errors.Unwrap to reach an underlying cause.
type Error = failure.Error

// Kind classifies an Error.
type Kind = failure.Kind

const (
	// KindTransport: non-success status, unreadable response, or a request
	// that could not be sent.
	KindTransport = failure.KindTransport
	// KindService: the response carried a non-empty errors list.
	KindService = failure.KindService
	// KindMissingField: the response data lacks the requested field.
	KindMissingField = failure.KindMissingField
	// KindCoercion: a value or argument does not fit its declared type, or
	// a custom scalar could not be constructed.
	KindCoercion = failure.KindCoercion
	// KindConfiguration: a declaration cannot be bound.
	KindConfiguration = failure.KindConfiguration
)

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	return failure.Is(err, k)
}
