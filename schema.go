package typesafe

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/ggoodman/typesafe-graphql-go/internal/descriptor"
	"github.com/ggoodman/typesafe-graphql-go/internal/failure"
	"github.com/ggoodman/typesafe-graphql-go/internal/selection"
)

// OperationInfo describes one bound operation.
type OperationInfo struct {
	// Member is the name errors use for the operation, Field the selected
	// GraphQL field.
	Member string
	Field  string
	// Type is "query" or "mutation".
	Type      string
	Arguments []ArgumentInfo
	// Selection is the selected field with its sub-selection, without
	// arguments.
	Selection string
	// Result is the JSON schema a response value must satisfy.
	Result *jsonschema.Schema
}

// ArgumentInfo describes one argument of an operation.
type ArgumentInfo struct {
	Name   string
	Schema *jsonschema.Schema
}

// Describe reports the operations Bind would install into api, which may be
// a struct value, a pointer to one, or a reflect.Type of either.
func Describe(c *Client, api any) ([]OperationInfo, error) {
	t, ok := api.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(api)
	}
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, failure.Configuration("typesafe: Describe requires a struct type, got %v", t)
	}
	ops, err := c.operations(t)
	if err != nil {
		return nil, err
	}
	out := make([]OperationInfo, len(ops))
	for i, op := range ops {
		info := OperationInfo{
			Member:    op.member,
			Field:     op.field,
			Type:      string(op.opType),
			Selection: selection.Selection{Field: op.field, Sub: selection.SubSelection(op.result)}.String(),
			Result:    schemaOf(op.result),
		}
		for _, p := range op.params {
			info.Arguments = append(info.Arguments, ArgumentInfo{Name: p.name, Schema: schemaOf(p.d)})
		}
		out[i] = info
	}
	return out, nil
}

// ResultSchema returns the JSON schema of values bound to t.
func (c *Client) ResultSchema(t reflect.Type) (*jsonschema.Schema, error) {
	d, err := c.resolver.Resolve(t)
	if err != nil {
		return nil, err
	}
	s := schemaOf(d)
	s.Version = jsonschema.Version
	return s, nil
}

var timeType = reflect.TypeFor[time.Time]()

// schemaOf renders a descriptor as a JSON schema. Nullability is expressed
// only through the required list of objects.
func schemaOf(d *descriptor.Descriptor) *jsonschema.Schema {
	s := &jsonschema.Schema{}
	switch d.Kind {
	case descriptor.KindBool:
		s.Type = "boolean"
	case descriptor.KindChar:
		s.Type = "string"
		s.Format = "char"
	case descriptor.KindString:
		s.Type = "string"
	case descriptor.KindBigInteger:
		s.Type = "integer"
	case descriptor.KindFloat, descriptor.KindDouble, descriptor.KindBigDecimal:
		s.Type = "number"
	case descriptor.KindEnum:
		s.Type = "string"
		s.Title = d.ScalarName
		for _, v := range d.EnumValues {
			s.Enum = append(s.Enum, v)
		}
	case descriptor.KindCustomScalar:
		s.Type = "string"
		s.Title = d.ScalarName
		if d.Base == timeType {
			s.Format = "date-time"
		}
	case descriptor.KindList:
		s.Type = "array"
		s.Items = schemaOf(d.Elem)
	case descriptor.KindObject:
		s.Type = "object"
		s.Title = d.ScalarName
		s.Properties = orderedmap.New[string, *jsonschema.Schema]()
		for _, f := range d.Fields {
			s.Properties.Set(f.Name, schemaOf(f.Descriptor))
			if !f.Descriptor.Nullable {
				s.Required = append(s.Required, f.Name)
			}
		}
	default:
		if d.Kind.IsInteger() {
			s.Type = "integer"
			if d.Bounds != nil {
				s.Minimum = json.Number(d.Bounds.Min.String())
				s.Maximum = json.Number(d.Bounds.Max.String())
			}
		}
	}
	return s
}
