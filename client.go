package typesafe

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"

	"github.com/ggoodman/typesafe-graphql-go/internal/descriptor"
	"github.com/ggoodman/typesafe-graphql-go/internal/logctx"
	"github.com/ggoodman/typesafe-graphql-go/transport"
)

// Char is a single character result or argument, within [0, 0xFFFF].
type Char = descriptor.Char

// Client sends operations through a transport. It is safe for concurrent
// use once built; all registration happens through Options passed to New.
type Client struct {
	transport transport.Transport
	resolver  *descriptor.Resolver
	log       *slog.Logger
	closers   []io.Closer

	// apis caches the compiled operations of each bound struct type.
	apis sync.Map // reflect.Type -> []*operation
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	logger   slog.Handler
	registry *descriptor.Registry
	closers  []io.Closer
}

// WithLogHandler sets the slog handler used by the client. If not provided,
// logs are discarded.
func WithLogHandler(h slog.Handler) Option {
	return func(c *clientConfig) { c.logger = h }
}

// withCloser makes the client own a resource released by Close.
func withCloser(cl io.Closer) Option {
	return func(c *clientConfig) { c.closers = append(c.closers, cl) }
}

// Strategy is a construction function offered for a custom scalar. See
// Scalar.
type Strategy struct {
	candidate descriptor.Candidate
}

// Of offers fn as the of factory, the most preferred strategy.
func Of(fn any) Strategy {
	return Strategy{descriptor.Candidate{Kind: descriptor.StrategyOf, Fn: fn}}
}

// ValueOf offers fn as a valueOf factory. When several are offered and any
// of them does not take a single string, none are used.
func ValueOf(fn any) Strategy {
	return Strategy{descriptor.Candidate{Kind: descriptor.StrategyValueOf, Fn: fn}}
}

// Parse offers fn as the parse factory.
func Parse(fn any) Strategy {
	return Strategy{descriptor.Candidate{Kind: descriptor.StrategyParse, Fn: fn}}
}

// Constructor offers fn as the text constructor, the least preferred
// strategy.
func Constructor(fn any) Strategy {
	return Strategy{descriptor.Candidate{Kind: descriptor.StrategyConstructor, Fn: fn}}
}

// Scalar declares T as a custom scalar built from text by the first
// applicable strategy in the order of, valueOf, parse, constructor.
// Applicable functions have the shape func(string) R or
// func(string) (R, error) where R is T or *T. Within one kind the first
// applicable function in argument order is used. Only the selected
// strategy is ever called; its error or panic fails the call.
func Scalar[T any](strategies ...Strategy) Option {
	return func(c *clientConfig) {
		cands := make([]descriptor.Candidate, len(strategies))
		for i, s := range strategies {
			cands[i] = s.candidate
		}
		c.registry.AddScalar(reflect.TypeFor[T](), cands...)
	}
}

// Enum declares T as an enum with the given member names.
func Enum[T ~string](values ...string) Option {
	return func(c *clientConfig) {
		c.registry.AddEnum(reflect.TypeFor[T](), values)
	}
}

// New returns a Client sending through t.
func New(t transport.Transport, opts ...Option) *Client {
	cfg := &clientConfig{registry: descriptor.NewRegistry()}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Client{
		transport: t,
		resolver:  descriptor.NewResolver(cfg.registry),
		log:       logctx.New(cfg.logger),
		closers:   cfg.closers,
	}
}

// Transport returns the transport the client sends through.
func (c *Client) Transport() transport.Transport { return c.transport }

// Close releases resources the client owns, such as a response cache
// created by NewFromConfig.
func (c *Client) Close() error {
	var errs []error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
