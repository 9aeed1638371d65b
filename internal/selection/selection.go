// Package selection derives GraphQL request documents from bound operations.
package selection

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ggoodman/typesafe-graphql-go/internal/descriptor"
	"github.com/ggoodman/typesafe-graphql-go/value"
)

// OperationType is the keyword that opens a request document.
type OperationType string

const (
	Query    OperationType = "query"
	Mutation OperationType = "mutation"
)

// FieldName derives the GraphQL field name from a lower-camel method name.
// A "get" prefix is stripped only when an upper-case letter follows it.
func FieldName(method string) string {
	rest, ok := strings.CutPrefix(method, "get")
	if !ok || rest == "" {
		return method
	}
	if r, _ := utf8.DecodeRuneInString(rest); !unicode.IsUpper(r) {
		return method
	}
	return descriptor.LowerFirst(rest)
}

// Argument is one rendered field argument.
type Argument struct {
	Name  string
	Value string
}

// Selection is a single top-level field of a request document together with
// its arguments and sub-selection.
type Selection struct {
	Field     string
	Arguments []Argument
	// Sub is the rendered sub-selection, empty for scalar results.
	Sub string
}

// Derive builds the selection for method, naming the field by FieldName.
func Derive(method string, params []Param, result *descriptor.Descriptor) (Selection, error) {
	return New(FieldName(method), params, result)
}

// New builds the selection of field. Parameters whose value is absent (a
// nil pointer, slice or interface) are left out of the argument list.
func New(field string, params []Param, result *descriptor.Descriptor) (Selection, error) {
	s := Selection{Field: field, Sub: SubSelection(result)}
	for _, p := range params {
		lit, ok, err := literal(p.Value, p.Descriptor)
		if err != nil {
			return Selection{}, argumentError(p.Name, err)
		}
		if !ok {
			continue
		}
		s.Arguments = append(s.Arguments, Argument{Name: p.Name, Value: lit})
	}
	return s, nil
}

// String renders the selection as it appears in a document, for example
// `profile(id: "1") {name tags}`.
func (s Selection) String() string {
	var b strings.Builder
	b.WriteString(s.Field)
	if len(s.Arguments) > 0 {
		b.WriteByte('(')
		for i, a := range s.Arguments {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.Name)
			b.WriteString(": ")
			b.WriteString(a.Value)
		}
		b.WriteByte(')')
	}
	if s.Sub != "" {
		b.WriteByte(' ')
		b.WriteString(s.Sub)
	}
	return b.String()
}

// SubSelection renders the braced field list of an object result, looking
// through pointers and lists. Scalar results have none.
func SubSelection(d *descriptor.Descriptor) string {
	if d == nil {
		return ""
	}
	d = d.Leaf()
	if d.Kind != descriptor.KindObject {
		return ""
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range d.Fields {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f.Name)
		if sub := SubSelection(f.Descriptor); sub != "" {
			b.WriteByte(' ')
			b.WriteString(sub)
		}
	}
	b.WriteByte('}')
	return b.String()
}

// Document is an outgoing request: one operation type and its top-level
// selections.
type Document struct {
	Type       OperationType
	Selections []Selection
}

func (d Document) String() string {
	typ := d.Type
	if typ == "" {
		typ = Query
	}
	parts := make([]string, len(d.Selections))
	for i, s := range d.Selections {
		parts[i] = s.String()
	}
	return string(typ) + " { " + strings.Join(parts, " ") + " }"
}

// Body renders the JSON request body carrying the document.
func (d Document) Body() []byte {
	return []byte(`{"query":` + value.Quote(d.String()) + `}`)
}
