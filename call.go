package typesafe

import (
	"context"
	"errors"
	"log/slog"
	"reflect"

	"github.com/ggoodman/typesafe-graphql-go/internal/coerce"
	"github.com/ggoodman/typesafe-graphql-go/internal/failure"
	"github.com/ggoodman/typesafe-graphql-go/internal/logctx"
	"github.com/ggoodman/typesafe-graphql-go/internal/route"
	"github.com/ggoodman/typesafe-graphql-go/internal/selection"
	"github.com/ggoodman/typesafe-graphql-go/transport"
)

// Argument is a named argument of an ad-hoc operation.
type Argument struct {
	name  string
	value any
}

// Arg names value as an argument. A nil value, or a nil pointer or slice,
// is left out of the request.
func Arg(name string, value any) Argument {
	return Argument{name: name, value: value}
}

// Query sends a query selecting field and binds the field's value to T.
// Locations in errors read query#field.
func Query[T any](ctx context.Context, c *Client, field string, args ...Argument) (T, error) {
	return adhoc[T](ctx, c, selection.Query, field, args)
}

// Mutate sends a mutation selecting field and binds the field's value to T.
func Mutate[T any](ctx context.Context, c *Client, field string, args ...Argument) (T, error) {
	return adhoc[T](ctx, c, selection.Mutation, field, args)
}

func adhoc[T any](ctx context.Context, c *Client, opType selection.OperationType, field string, args []Argument) (T, error) {
	var zero T
	result, err := c.resolver.Resolve(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	op := &operation{api: string(opType), member: field, field: field, opType: opType, result: result}

	params := make([]selection.Param, 0, len(args))
	for _, a := range args {
		if a.value == nil {
			continue
		}
		v := reflect.ValueOf(a.value)
		d, err := c.resolver.Resolve(v.Type())
		if err != nil {
			return zero, err
		}
		params = append(params, selection.Param{Name: a.name, Descriptor: d, Value: v})
	}

	v, err := c.call(ctx, op, params)
	if err != nil {
		return zero, err
	}
	return v.Interface().(T), nil
}

// call performs one round trip: derive, send, route and coerce.
func (c *Client) call(ctx context.Context, op *operation, params []selection.Param) (reflect.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logctx.WithOperationData(ctx, &logctx.OperationData{
		API:    op.api,
		Member: op.member,
		Field:  op.field,
		Type:   string(op.opType),
	})

	v, err := c.roundTrip(ctx, op, params)
	if err != nil {
		c.log.WarnContext(ctx, "graphql.call.fail", slog.String("err", err.Error()))
		return reflect.Value{}, err
	}
	return v, nil
}

func (c *Client) roundTrip(ctx context.Context, op *operation, params []selection.Param) (reflect.Value, error) {
	sel, err := selection.New(op.field, params, op.result)
	if err != nil {
		return reflect.Value{}, err
	}
	doc := selection.Document{Type: op.opType, Selections: []selection.Selection{sel}}
	req := &transport.Request{Operation: string(op.opType), Document: doc.String(), Body: doc.Body()}

	c.log.DebugContext(ctx, "graphql.call", slog.String("document", req.Document))
	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return reflect.Value{}, sendError(err)
	}

	n, err := route.Route(resp, op.field, req.Body)
	if err != nil {
		return reflect.Value{}, err
	}
	return coerce.Value(n, op.result, coerce.Location{API: op.api, Member: op.member})
}

func sendError(err error) error {
	var fe *failure.Error
	if errors.As(err, &fe) {
		return fe
	}
	return failure.Wrap(failure.KindTransport, err, "failed to send request: %v", err)
}
