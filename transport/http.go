package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/elnormous/contenttype"
	"github.com/google/uuid"

	"github.com/ggoodman/typesafe-graphql-go/internal/logctx"
)

const (
	// DefaultMaxResponseBytes bounds the response body read by HTTP.
	DefaultMaxResponseBytes int64 = 10 << 20
	// DefaultTimeout is the request timeout used when none is configured.
	DefaultTimeout = 30 * time.Second

	acceptHeader    = "application/graphql-response+json, application/json"
	requestIDHeader = "X-Request-ID"
)

var (
	// ErrUnexpectedContentType is returned for a successful response whose
	// body is not declared as JSON.
	ErrUnexpectedContentType = errors.New("transport: unexpected content type")
	// ErrResponseTooLarge is returned when the body exceeds the configured limit.
	ErrResponseTooLarge = errors.New("transport: response body too large")

	jsonMediaType = contenttype.NewMediaType("application/json")
)

// HTTPOption configures an HTTP transport.
type HTTPOption func(*httpConfig)

type httpConfig struct {
	client   *http.Client
	timeout  time.Duration
	headers  http.Header
	maxBytes int64
	logger   slog.Handler
}

// WithHTTPClient sets the client used to send requests. Its Timeout is left
// untouched unless WithTimeout is also given.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(cfg *httpConfig) { cfg.client = c }
}

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) HTTPOption {
	return func(cfg *httpConfig) { cfg.timeout = d }
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) HTTPOption {
	return func(cfg *httpConfig) { cfg.headers.Add(key, value) }
}

// WithMaxResponseBytes bounds the response body. Values <= 0 select
// DefaultMaxResponseBytes.
func WithMaxResponseBytes(n int64) HTTPOption {
	return func(cfg *httpConfig) { cfg.maxBytes = n }
}

// WithLogHandler sets the slog handler used by the transport. If not
// provided, logs are discarded.
func WithLogHandler(h slog.Handler) HTTPOption {
	return func(cfg *httpConfig) { cfg.logger = h }
}

// HTTP posts request bodies to a single GraphQL endpoint. It is safe for
// concurrent use.
type HTTP struct {
	endpoint string
	client   *http.Client
	headers  http.Header
	maxBytes int64
	log      *slog.Logger
}

// NewHTTP returns a transport posting to endpoint, which must be an
// absolute http or https URL.
func NewHTTP(endpoint string, opts ...HTTPOption) (*HTTP, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("transport: invalid endpoint: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("transport: endpoint must use HTTP or HTTPS scheme, got %q", u.Scheme)
	}

	cfg := &httpConfig{headers: http.Header{}}
	for _, opt := range opts {
		opt(cfg)
	}

	client := cfg.client
	switch {
	case client == nil:
		timeout := cfg.timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	case cfg.timeout > 0:
		cc := *client
		cc.Timeout = cfg.timeout
		client = &cc
	}
	maxBytes := cfg.maxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxResponseBytes
	}

	return &HTTP{
		endpoint: u.String(),
		client:   client,
		headers:  cfg.headers,
		maxBytes: maxBytes,
		log:      logctx.New(cfg.logger),
	}, nil
}

// Endpoint returns the URL requests are posted to.
func (t *HTTP) Endpoint() string { return t.endpoint }

// Send posts req.Body and returns the status and body. Non-success statuses
// are not errors; the caller classifies them.
func (t *HTTP) Send(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("transport: create request: %w", err)
	}
	for k, vs := range t.headers {
		httpReq.Header[k] = append([]string(nil), vs...)
	}
	httpReq.Header.Set("Content-Type", jsonMediaType.String())
	httpReq.Header.Set("Accept", acceptHeader)

	requestID := httpReq.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
		httpReq.Header.Set(requestIDHeader, requestID)
	}
	ctx = logctx.WithRequestData(ctx, &logctx.RequestData{RequestID: requestID, Endpoint: t.endpoint})

	start := time.Now()
	t.log.DebugContext(ctx, "graphql.request.send", slog.String("operation", req.Operation), slog.Int("bytes", len(req.Body)))

	resp, err := t.client.Do(httpReq)
	if err != nil {
		t.log.WarnContext(ctx, "graphql.request.fail", slog.String("err", err.Error()))
		return nil, fmt.Errorf("transport: send: %w", err)
	}
	defer CleanlyCloseBody(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("transport: read body: %w", err)
	}
	if int64(len(body)) > t.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrResponseTooLarge, t.maxBytes)
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Reason:     reason(resp),
		Header:     resp.Header,
		Body:       body,
	}
	t.log.DebugContext(ctx, "graphql.response",
		slog.Int("status", out.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)),
	)

	if out.Successful() {
		if ct := resp.Header.Get("Content-Type"); ct != "" && !isJSON(contenttype.NewMediaType(ct)) {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedContentType, ct)
		}
	}
	return out, nil
}

// isJSON accepts application/json and any structured +json subtype such as
// application/graphql-response+json.
func isJSON(mt contenttype.MediaType) bool {
	if mt.Matches(jsonMediaType) {
		return true
	}
	return strings.EqualFold(mt.Type, "application") && strings.HasSuffix(strings.ToLower(mt.Subtype), "+json")
}

// reason returns the reason phrase of resp, falling back to the standard
// text for its code.
func reason(resp *http.Response) string {
	if r, ok := strings.CutPrefix(resp.Status, strconv.Itoa(resp.StatusCode)); ok {
		if r = strings.TrimSpace(r); r != "" {
			return r
		}
	}
	return http.StatusText(resp.StatusCode)
}

// CleanlyCloseBody drains and closes an HTTP response body so the
// connection can be reused.
func CleanlyCloseBody(body io.ReadCloser) error {
	if body == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, body)
	return body.Close()
}
