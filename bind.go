package typesafe

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/ggoodman/typesafe-graphql-go/internal/descriptor"
	"github.com/ggoodman/typesafe-graphql-go/internal/failure"
	"github.com/ggoodman/typesafe-graphql-go/internal/selection"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// operation is the compiled form of one bound func field.
type operation struct {
	// index of the func field within the API struct.
	index  int
	api    string
	member string
	field  string
	opType selection.OperationType
	params []param
	result *descriptor.Descriptor
	fnType reflect.Type
}

type param struct {
	name string
	d    *descriptor.Descriptor
}

// Bind installs an implementation into every exported func field of the
// struct api points to. All fields are checked before any is assigned, so a
// configuration error leaves api untouched. Fields that are not funcs, and
// fields tagged `graphql:"-"`, are ignored.
func Bind(c *Client, api any) error {
	rv := reflect.ValueOf(api)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return failure.Configuration("typesafe: Bind requires a non-nil pointer to a struct, got %T", api)
	}
	ops, err := c.operations(rv.Elem().Type())
	if err != nil {
		return err
	}
	for _, op := range ops {
		rv.Elem().Field(op.index).Set(reflect.MakeFunc(op.fnType, c.invoker(op)))
	}
	return nil
}

// MustBind is Bind, panicking on error.
func MustBind(c *Client, api any) {
	if err := Bind(c, api); err != nil {
		panic(err)
	}
}

// operations compiles every bound field of t, once per client.
func (c *Client) operations(t reflect.Type) ([]*operation, error) {
	if v, ok := c.apis.Load(t); ok {
		return v.([]*operation), nil
	}
	api := descriptor.QualifiedName(t)
	var ops []*operation
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Type.Kind() != reflect.Func {
			continue
		}
		op, skip, err := c.compile(api, f)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		op.index = i
		ops = append(ops, op)
	}
	v, _ := c.apis.LoadOrStore(t, ops)
	return v.([]*operation), nil
}

func (c *Client) compile(api string, f reflect.StructField) (*operation, bool, error) {
	member := descriptor.LowerFirst(f.Name)
	op := &operation{api: api, member: member, opType: selection.Query, fnType: f.Type}

	tag := f.Tag.Get("graphql")
	if tag == "-" {
		return nil, true, nil
	}
	name, kind, _ := strings.Cut(tag, ",")
	switch kind {
	case "", "query":
	case "mutation":
		op.opType = selection.Mutation
	default:
		return nil, false, bindError(api, member, fmt.Errorf("unknown operation type %q", kind))
	}
	op.field = name
	if name == "" {
		op.field = selection.FieldName(member)
	}

	ft := f.Type
	if ft.IsVariadic() || ft.NumIn() == 0 || ft.In(0) != contextType || ft.NumOut() != 2 || ft.Out(1) != errorType {
		return nil, false, bindError(api, member, fmt.Errorf("%s must have the shape func(context.Context, ...) (T, error)", ft))
	}

	var names []string
	if args := strings.TrimSpace(f.Tag.Get("args")); args != "" {
		for _, n := range strings.Split(args, ",") {
			names = append(names, strings.TrimSpace(n))
		}
	}
	if len(names) != ft.NumIn()-1 {
		return nil, false, bindError(api, member, fmt.Errorf("args tag names %d parameters, func takes %d", len(names), ft.NumIn()-1))
	}
	for i, n := range names {
		if n == "" {
			return nil, false, bindError(api, member, fmt.Errorf("parameter %d has no name", i+1))
		}
		d, err := c.resolver.Resolve(ft.In(i + 1))
		if err != nil {
			return nil, false, bindError(api, member, err)
		}
		op.params = append(op.params, param{name: n, d: d})
	}

	d, err := c.resolver.Resolve(ft.Out(0))
	if err != nil {
		return nil, false, bindError(api, member, err)
	}
	op.result = d
	return op, false, nil
}

func bindError(api, member string, err error) error {
	msg := strings.TrimPrefix(err.Error(), "typesafe: ")
	return failure.Wrap(failure.KindConfiguration, err, "typesafe: cannot bind %s#%s: %s", api, member, msg)
}

// invoker adapts call to the reflect.MakeFunc calling convention.
func (c *Client) invoker(op *operation) func([]reflect.Value) []reflect.Value {
	return func(in []reflect.Value) []reflect.Value {
		ctx, _ := in[0].Interface().(context.Context)
		params := make([]selection.Param, len(op.params))
		for i, p := range op.params {
			params[i] = selection.Param{Name: p.name, Descriptor: p.d, Value: in[i+1]}
		}
		v, err := c.call(ctx, op, params)
		if err != nil {
			return []reflect.Value{reflect.Zero(op.fnType.Out(0)), reflect.ValueOf(&err).Elem()}
		}
		return []reflect.Value{v, reflect.Zero(errorType)}
	}
}
