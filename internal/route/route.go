// Package route locates the requested field in a GraphQL response, or
// classifies why it cannot.
package route

import (
	"errors"
	"fmt"

	"github.com/ggoodman/typesafe-graphql-go/internal/failure"
	"github.com/ggoodman/typesafe-graphql-go/transport"
	"github.com/ggoodman/typesafe-graphql-go/value"
)

// ErrNotObject is returned by Decode when the body is valid JSON but not an
// object.
var ErrNotObject = errors.New("route: response body is not a JSON object")

// Envelope is the decoded top level of a GraphQL response.
type Envelope struct {
	// Data is the data member; absent data decodes as null.
	Data value.Node
	// Errors is the errors member; absent errors decode as null.
	Errors value.Node
}

// HasErrors reports whether the envelope carries a non-empty errors member.
// An empty list or null means no errors.
func (e Envelope) HasErrors() bool {
	switch e.Errors.Kind() {
	case value.KindNull:
		return false
	case value.KindList:
		return e.Errors.Len() > 0
	default:
		return true
	}
}

// Decode parses a response body into its envelope.
func Decode(body []byte) (Envelope, error) {
	n, err := value.Parse(body)
	if err != nil {
		return Envelope{}, fmt.Errorf("route: decode: %w", err)
	}
	if n.Kind() != value.KindObject {
		return Envelope{}, ErrNotObject
	}
	var env Envelope
	if d, ok := n.Field("data"); ok {
		env.Data = d
	}
	if e, ok := n.Field("errors"); ok {
		env.Errors = e
	}
	return env, nil
}

// Route returns the node for field, checking in order the status, the
// body, the errors member, and the presence of field in data. request is
// the body that was sent, quoted in service errors.
func Route(resp *transport.Response, field string, request []byte) (value.Node, error) {
	if !resp.Successful() {
		return value.Node{}, failure.Status(resp.StatusCode, resp.Reason, resp.Body)
	}
	env, err := Decode(resp.Body)
	if err != nil {
		return value.Node{}, failure.Wrap(failure.KindTransport, err, "invalid response body: %v:\n%s", err, resp.Body)
	}
	if env.HasErrors() {
		return value.Node{}, failure.Service(env.Errors.String(), request)
	}
	n, ok := env.Data.Field(field)
	if !ok {
		return value.Node{}, failure.MissingField(field, env.Data.String())
	}
	return n, nil
}
