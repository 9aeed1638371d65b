package selection

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ggoodman/typesafe-graphql-go/internal/descriptor"
	"github.com/ggoodman/typesafe-graphql-go/internal/failure"
	"github.com/ggoodman/typesafe-graphql-go/value"
)

var (
	errNonFinite     = errors.New("float is not finite")
	errNotEnumMember = errors.New("not a member of the enum")
)

// Param is one argument of a call: its GraphQL name, the descriptor of its
// declared type and the value passed by the caller.
type Param struct {
	Name       string
	Descriptor *descriptor.Descriptor
	Value      reflect.Value
}

func argumentError(name string, err error) error {
	return failure.Wrap(failure.KindCoercion, err, "invalid argument %s: %v", name, err)
}

// literal renders v as a GraphQL input literal. ok is false when the
// argument is absent and must be omitted.
func literal(v reflect.Value, d *descriptor.Descriptor) (s string, ok bool, err error) {
	if !v.IsValid() {
		return "", false, nil
	}
	if (d.Pointer || d.Kind == descriptor.KindList) && v.IsNil() {
		return "", false, nil
	}
	s, err = render(v, d)
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

// Literal renders v the way an argument of type d is rendered, with absent
// values rendered as null.
func Literal(v reflect.Value, d *descriptor.Descriptor) (string, error) {
	return render(v, d)
}

func render(v reflect.Value, d *descriptor.Descriptor) (string, error) {
	if d.Pointer {
		if v.IsNil() {
			return "null", nil
		}
		v = v.Elem()
	}
	switch d.Kind {
	case descriptor.KindBool:
		return strconv.FormatBool(v.Bool()), nil
	case descriptor.KindChar:
		return value.Quote(string(rune(v.Int()))), nil
	case descriptor.KindByte, descriptor.KindShort, descriptor.KindInt, descriptor.KindLong:
		return strconv.FormatInt(v.Int(), 10), nil
	case descriptor.KindUnsigned:
		return strconv.FormatUint(v.Uint(), 10), nil
	case descriptor.KindFloat, descriptor.KindDouble:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", errNonFinite
		}
		return strconv.FormatFloat(f, 'g', -1, d.Bits), nil
	case descriptor.KindBigInteger:
		x := v.Interface().(big.Int)
		return x.String(), nil
	case descriptor.KindBigDecimal:
		return v.Interface().(decimal.Decimal).String(), nil
	case descriptor.KindString:
		return value.Quote(v.String()), nil
	case descriptor.KindEnum:
		if !d.HasEnumValue(v.String()) {
			return "", fmt.Errorf("%q is %w %s", v.String(), errNotEnumMember, d.ScalarName)
		}
		return v.String(), nil
	case descriptor.KindCustomScalar:
		text, err := scalarText(v)
		if err != nil {
			return "", err
		}
		return value.Quote(text), nil
	case descriptor.KindList:
		if v.IsNil() {
			return "null", nil
		}
		items := make([]string, v.Len())
		for i := range items {
			item, err := render(v.Index(i), d.Elem)
			if err != nil {
				return "", err
			}
			items[i] = item
		}
		return "[" + strings.Join(items, ", ") + "]", nil
	case descriptor.KindObject:
		var fields []string
		for _, f := range d.Fields {
			lit, ok, err := literal(v.FieldByIndex(f.Index), f.Descriptor)
			if err != nil {
				return "", err
			}
			if ok {
				fields = append(fields, f.Name+": "+lit)
			}
		}
		return "{" + strings.Join(fields, ", ") + "}", nil
	}
	return "", fmt.Errorf("no literal form for %s", d.Kind)
}

// scalarText renders a custom scalar through encoding.TextMarshaler, then
// fmt.Stringer, on either the value or a pointer to a copy of it.
func scalarText(v reflect.Value) (string, error) {
	candidates := []any{v.Interface()}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	candidates = append(candidates, p.Interface())

	for _, c := range candidates {
		if m, ok := c.(encoding.TextMarshaler); ok {
			b, err := m.MarshalText()
			if err != nil {
				return "", err
			}
			return string(b), nil
		}
	}
	for _, c := range candidates {
		if s, ok := c.(fmt.Stringer); ok {
			return s.String(), nil
		}
	}
	return fmt.Sprint(v.Interface()), nil
}
