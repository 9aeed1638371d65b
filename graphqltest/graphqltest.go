// Package graphqltest provides an in-process GraphQL endpoint for tests. A
// Fixture records every request it receives and answers with a canned
// response.
package graphqltest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	typesafe "github.com/ggoodman/typesafe-graphql-go"
	"github.com/ggoodman/typesafe-graphql-go/transport"
	"github.com/ggoodman/typesafe-graphql-go/value"
)

// Path is the route the fixture serves GraphQL on.
const Path = "/graphql"

// Request is one request received by a Fixture.
type Request struct {
	Header http.Header
	Body   []byte
	// Document is the query member of the body.
	Document string
}

// Fixture is a GraphQL endpoint backed by httptest.Server. It is safe for
// concurrent use.
type Fixture struct {
	t      testing.TB
	server *httptest.Server

	mu          sync.Mutex
	status      int
	contentType string
	body        string
	requests    []Request
}

// New starts a fixture that answers `{"data":{}}` until told otherwise. It
// is closed when the test ends.
func New(t testing.TB) *Fixture {
	t.Helper()
	f := &Fixture{t: t, status: http.StatusOK, contentType: "application/json", body: `{"data":{}}`}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post(Path, f.handle)

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

func (f *Fixture) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req := Request{Header: r.Header.Clone(), Body: body}
	if n, err := value.Parse(body); err == nil {
		if q, ok := n.Field("query"); ok && q.Kind() == value.KindString {
			req.Document = q.Text()
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	status, contentType, resp := f.status, f.contentType, f.body
	f.mu.Unlock()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp)
}

// URL returns the GraphQL endpoint URL.
func (f *Fixture) URL() string { return f.server.URL + Path }

// ReturnsData answers with a 200 response whose data object holds fields.
// Single quotes in fields are turned into double quotes, so
// ReturnsData("'bool':true") answers {"data":{"bool":true}}.
func (f *Fixture) ReturnsData(fields string) *Fixture {
	return f.Returns(http.StatusOK, "application/json", `{"data":{`+strings.ReplaceAll(fields, "'", `"`)+`}}`)
}

// ReturnsErrors answers with a 200 response carrying the given errors list,
// with single quotes turned into double quotes.
func (f *Fixture) ReturnsErrors(errors string) *Fixture {
	return f.Returns(http.StatusOK, "application/json", `{"errors":`+strings.ReplaceAll(errors, "'", `"`)+`}`)
}

// Returns answers with an arbitrary response. An empty contentType sends no
// Content-Type header.
func (f *Fixture) Returns(status int, contentType, body string) *Fixture {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.contentType, f.body = status, contentType, body
	return f
}

// Requests returns every request received so far.
func (f *Fixture) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// Last returns the most recent request, failing the test when none has
// been received.
func (f *Fixture) Last() Request {
	f.t.Helper()
	reqs := f.Requests()
	if len(reqs) == 0 {
		f.t.Fatalf("graphqltest: no request received")
	}
	return reqs[len(reqs)-1]
}

// Query returns the selection of the most recent request with the
// operation keyword and outer braces removed, so a request for
// `query { foo {value} }` yields "foo {value}".
func (f *Fixture) Query() string {
	f.t.Helper()
	doc := f.Last().Document
	for _, kw := range []string{"query", "mutation"} {
		if rest, ok := strings.CutPrefix(doc, kw+" { "); ok {
			if inner, ok := strings.CutSuffix(rest, " }"); ok {
				return inner
			}
		}
	}
	return doc
}

// Transport returns an HTTP transport posting to the fixture.
func (f *Fixture) Transport(opts ...transport.HTTPOption) *transport.HTTP {
	f.t.Helper()
	h, err := transport.NewHTTP(f.URL(), opts...)
	if err != nil {
		f.t.Fatalf("graphqltest: %v", err)
	}
	return h
}

// Client returns a client posting to the fixture.
func (f *Fixture) Client(opts ...typesafe.Option) *typesafe.Client {
	f.t.Helper()
	return typesafe.New(f.Transport(), opts...)
}
