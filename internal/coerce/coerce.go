// Package coerce binds value trees to the Go types classified by package
// descriptor.
package coerce

import (
	"math/big"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/ggoodman/typesafe-graphql-go/internal/descriptor"
	"github.com/ggoodman/typesafe-graphql-go/internal/failure"
	"github.com/ggoodman/typesafe-graphql-go/value"
)

// Location names the member being bound, rendered as "<API>#<member>".
type Location struct {
	API    string
	Member string
}

func (l Location) String() string { return l.API + "#" + l.Member }

// Field returns the location of a named field nested under l.
func (l Location) Field(name string) Location {
	l.Member += "." + name
	return l
}

// Index returns the location of a list element nested under l.
func (l Location) Index(i int) Location {
	l.Member += "[" + strconv.Itoa(i) + "]"
	return l
}

// Value converts n into a value of d.Type. Any failure is a *failure.Error
// of kind KindCoercion naming loc.
func Value(n value.Node, d *descriptor.Descriptor, loc Location) (reflect.Value, error) {
	if n.IsNull() {
		if d.Nullable {
			return reflect.Zero(d.Type), nil
		}
		return reflect.Value{}, invalid(d, loc, n)
	}
	v, err := base(n, d, loc)
	if err != nil {
		return reflect.Value{}, err
	}
	if d.Pointer {
		p := reflect.New(d.Base)
		p.Elem().Set(v)
		return p, nil
	}
	return v, nil
}

// Into is Value for callers holding a typed destination.
func Into[T any](n value.Node, d *descriptor.Descriptor, loc Location) (T, error) {
	var zero T
	v, err := Value(n, d, loc)
	if err != nil {
		return zero, err
	}
	return v.Interface().(T), nil
}

func invalid(d *descriptor.Descriptor, loc Location, n value.Node) error {
	return failure.InvalidValue(d.TypeName, loc.String(), n.String())
}

func base(n value.Node, d *descriptor.Descriptor, loc Location) (reflect.Value, error) {
	switch d.Kind {
	case descriptor.KindBool:
		b, ok := n.Bool()
		if !ok {
			return reflect.Value{}, invalid(d, loc, n)
		}
		return reflect.ValueOf(b).Convert(d.Base), nil

	case descriptor.KindChar:
		return char(n, d, loc)

	case descriptor.KindByte, descriptor.KindShort, descriptor.KindInt, descriptor.KindLong, descriptor.KindUnsigned:
		x, ok := integer(n)
		if !ok || !d.Bounds.Contains(x) {
			return reflect.Value{}, invalid(d, loc, n)
		}
		out := reflect.New(d.Base).Elem()
		if d.Kind == descriptor.KindUnsigned {
			out.SetUint(x.Uint64())
		} else {
			out.SetInt(x.Int64())
		}
		return out, nil

	case descriptor.KindFloat, descriptor.KindDouble:
		if n.Kind() != value.KindNumber {
			return reflect.Value{}, invalid(d, loc, n)
		}
		f, err := strconv.ParseFloat(n.Text(), d.Bits)
		if err != nil {
			return reflect.Value{}, invalid(d, loc, n)
		}
		out := reflect.New(d.Base).Elem()
		out.SetFloat(f)
		return out, nil

	case descriptor.KindBigInteger:
		x, ok := integer(n)
		if !ok {
			return reflect.Value{}, invalid(d, loc, n)
		}
		return reflect.ValueOf(x).Elem(), nil

	case descriptor.KindBigDecimal:
		if n.Kind() != value.KindNumber {
			return reflect.Value{}, invalid(d, loc, n)
		}
		dec, err := decimal.NewFromString(n.Text())
		if err != nil {
			return reflect.Value{}, invalid(d, loc, n)
		}
		return reflect.ValueOf(dec), nil

	case descriptor.KindString:
		if n.Kind() != value.KindString {
			return reflect.Value{}, invalid(d, loc, n)
		}
		return reflect.ValueOf(n.Text()).Convert(d.Base), nil

	case descriptor.KindEnum:
		if n.Kind() != value.KindString || !d.HasEnumValue(n.Text()) {
			return reflect.Value{}, invalid(d, loc, n)
		}
		return reflect.ValueOf(n.Text()).Convert(d.Base), nil

	case descriptor.KindCustomScalar:
		return scalar(n, d, loc)

	case descriptor.KindObject:
		return object(n, d, loc)

	case descriptor.KindList:
		return list(n, d, loc)
	}
	return reflect.Value{}, failure.Configuration("typesafe: no coercion for %s", d.Kind)
}

// integer parses the exact text of a number node as a base 10 integer.
// Fractions and exponents are rejected.
func integer(n value.Node) (*big.Int, bool) {
	if n.Kind() != value.KindNumber {
		return nil, false
	}
	return new(big.Int).SetString(n.Text(), 10)
}

func char(n value.Node, d *descriptor.Descriptor, loc Location) (reflect.Value, error) {
	var r rune
	switch n.Kind() {
	case value.KindString:
		s := n.Text()
		c, size := utf8.DecodeRuneInString(s)
		if size == 0 || size != len(s) || (c == utf8.RuneError && size == 1) {
			return reflect.Value{}, invalid(d, loc, n)
		}
		r = c
	case value.KindNumber:
		x, ok := integer(n)
		if !ok {
			return reflect.Value{}, invalid(d, loc, n)
		}
		if !d.Bounds.Contains(x) {
			return reflect.Value{}, invalid(d, loc, n)
		}
		r = rune(x.Int64())
	default:
		return reflect.Value{}, invalid(d, loc, n)
	}
	if r > 0xFFFF {
		return reflect.Value{}, invalid(d, loc, n)
	}
	out := reflect.New(d.Base).Elem()
	out.SetInt(int64(r))
	return out, nil
}

func scalar(n value.Node, d *descriptor.Descriptor, loc Location) (reflect.Value, error) {
	text := n.String()
	if n.Kind() == value.KindString {
		text = n.Text()
	}
	v, err := d.Strategies[0].Build(text)
	if err != nil {
		return reflect.Value{}, failure.ScalarConstruction(d.ScalarName, loc.String(), err)
	}
	return v, nil
}

func object(n value.Node, d *descriptor.Descriptor, loc Location) (reflect.Value, error) {
	if n.Kind() != value.KindObject {
		return reflect.Value{}, invalid(d, loc, n)
	}
	out := reflect.New(d.Base).Elem()
	for _, f := range d.Fields {
		child, ok := n.Field(f.Name)
		if !ok {
			continue
		}
		v, err := Value(child, f.Descriptor, loc.Field(f.Name))
		if err != nil {
			return reflect.Value{}, err
		}
		out.FieldByIndex(f.Index).Set(v)
	}
	return out, nil
}

func list(n value.Node, d *descriptor.Descriptor, loc Location) (reflect.Value, error) {
	if n.Kind() != value.KindList {
		return reflect.Value{}, invalid(d, loc, n)
	}
	out := reflect.MakeSlice(d.Base, n.Len(), n.Len())
	for i, item := range n.Items() {
		v, err := Value(item, d.Elem, loc.Index(i))
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(v)
	}
	return out, nil
}
