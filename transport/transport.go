// Package transport carries request documents to a GraphQL service and
// returns its raw responses.
//
// The core binding layer only interprets the status code and body of a
// Response. Implementations must be safe for concurrent use and own any
// cancellation, timeout, or connection management.
package transport

import (
	"context"
	"net/http"
)

// Request is a rendered request document.
type Request struct {
	// Operation is the operation type keyword, "query" or "mutation".
	Operation string
	// Document is the GraphQL document text.
	Document string
	// Body is the JSON request body carrying Document.
	Body []byte
}

// Response is the raw result of sending a Request.
type Response struct {
	StatusCode int
	Reason     string
	Header     http.Header
	Body       []byte
}

// Successful reports whether the status code is in the 2xx range.
func (r *Response) Successful() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// Transport sends requests. A returned error means no response was
// obtained at all.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// Func adapts a function to Transport.
type Func func(ctx context.Context, req *Request) (*Response, error)

func (f Func) Send(ctx context.Context, req *Request) (*Response, error) { return f(ctx, req) }
