package descriptor

import (
	"math/big"
	"reflect"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ggoodman/typesafe-graphql-go/internal/failure"
)

// Enumerator is implemented by string types that list their own members.
type Enumerator interface {
	EnumValues() []string
}

var (
	charType       = reflect.TypeOf(Char(0))
	bigIntType     = reflect.TypeOf(big.Int{})
	decimalType    = reflect.TypeOf(decimal.Decimal{})
	enumeratorType = reflect.TypeOf((*Enumerator)(nil)).Elem()
)

// Resolver computes and caches descriptors. It is safe for concurrent use.
type Resolver struct {
	reg   *Registry
	cache sync.Map // map[reflect.Type]*Descriptor
}

// NewResolver returns a Resolver consulting reg. A nil reg declares nothing.
func NewResolver(reg *Registry) *Resolver {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Resolver{reg: reg}
}

// Resolve returns the descriptor of t. Failures are configuration errors.
func (r *Resolver) Resolve(t reflect.Type) (*Descriptor, error) {
	if t == nil {
		return nil, failure.Configuration("typesafe: cannot bind untyped nil")
	}
	d, err := r.resolve(t, map[reflect.Type]bool{})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Resolver) resolve(t reflect.Type, visiting map[reflect.Type]bool) (*Descriptor, error) {
	if v, ok := r.cache.Load(t); ok {
		return v.(*Descriptor), nil
	}
	var (
		d   *Descriptor
		err error
	)
	if t.Kind() == reflect.Pointer {
		d, err = r.resolvePointer(t, visiting)
	} else {
		d, err = r.resolveBase(t, visiting)
	}
	if err != nil {
		return nil, err
	}
	actual, _ := r.cache.LoadOrStore(t, d)
	return actual.(*Descriptor), nil
}

func (r *Resolver) resolvePointer(t reflect.Type, visiting map[reflect.Type]bool) (*Descriptor, error) {
	elem := t.Elem()
	if elem.Kind() == reflect.Pointer {
		return nil, failure.Configuration("typesafe: unsupported type %s: pointer to pointer", t)
	}
	base, err := r.resolve(elem, visiting)
	if err != nil {
		return nil, err
	}
	d := *base
	d.Type = t
	d.Pointer = true
	d.Nullable = true
	d.TypeName = typeName(&d)
	return &d, nil
}

func (r *Resolver) resolveBase(t reflect.Type, visiting map[reflect.Type]bool) (*Descriptor, error) {
	d := &Descriptor{Type: t, Base: t, ScalarName: QualifiedName(t)}

	if cands, ok := r.reg.scalar(t); ok {
		d.Kind = KindCustomScalar
		d.Nullable = true
		d.Strategies = discover(t, cands)
		if len(d.Strategies) == 0 {
			return nil, failure.Configuration("typesafe: custom scalar %s has no applicable construction strategy", d.ScalarName)
		}
		d.TypeName = typeName(d)
		return d, nil
	}

	if values, ok := r.enumValues(t); ok {
		if t.Kind() != reflect.String {
			return nil, failure.Configuration("typesafe: enum %s must have a string underlying type", d.ScalarName)
		}
		if len(values) == 0 {
			return nil, failure.Configuration("typesafe: enum %s declares no values", d.ScalarName)
		}
		d.Kind = KindEnum
		d.Nullable = true
		d.EnumValues = values
		d.TypeName = typeName(d)
		return d, nil
	}

	switch {
	case t == charType:
		d.Kind = KindChar
		d.Bounds = charBounds
	case t == bigIntType:
		d.Kind = KindBigInteger
		d.Nullable = true
	case t == decimalType:
		d.Kind = KindBigDecimal
		d.Nullable = true
	default:
		if err := r.classify(d, visiting); err != nil {
			return nil, err
		}
	}
	d.TypeName = typeName(d)
	return d, nil
}

func (r *Resolver) classify(d *Descriptor, visiting map[reflect.Type]bool) error {
	t := d.Base
	switch t.Kind() {
	case reflect.Bool:
		d.Kind = KindBool
		return nil
	case reflect.Int8:
		d.Kind, d.Bounds = KindByte, signedBounds(8)
		return nil
	case reflect.Int16:
		d.Kind, d.Bounds = KindShort, signedBounds(16)
		return nil
	case reflect.Int32:
		d.Kind, d.Bounds = KindInt, signedBounds(32)
		return nil
	case reflect.Int64, reflect.Int:
		d.Kind, d.Bounds = KindLong, signedBounds(t.Bits())
		return nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		d.Kind, d.Bounds = KindUnsigned, unsignedBounds(t.Bits())
		return nil
	case reflect.Float32:
		d.Kind, d.Bits = KindFloat, 32
		return nil
	case reflect.Float64:
		d.Kind, d.Bits = KindDouble, 64
		return nil
	case reflect.String:
		d.Kind = KindString
		d.Nullable = true
		return nil
	case reflect.Slice:
		elem, err := r.resolve(t.Elem(), visiting)
		if err != nil {
			return err
		}
		d.Kind = KindList
		d.Nullable = true
		d.Elem = elem
		return nil
	}

	if implementsTextUnmarshaler(t) {
		d.Kind = KindCustomScalar
		d.Nullable = true
		d.Strategies = discover(t, nil)
		return nil
	}

	if t.Kind() == reflect.Struct {
		return r.object(d, visiting)
	}
	return failure.Configuration("typesafe: unsupported type %s", t)
}

func (r *Resolver) object(d *Descriptor, visiting map[reflect.Type]bool) error {
	t := d.Base
	if visiting[t] {
		return failure.Configuration("typesafe: recursive type %s cannot be selected", d.ScalarName)
	}
	visiting[t] = true
	defer delete(visiting, t)

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := FieldTagName(f)
		if name == "-" {
			continue
		}
		fd, err := r.resolve(f.Type, visiting)
		if err != nil {
			return err
		}
		d.Fields = append(d.Fields, Field{Name: name, Index: f.Index, Descriptor: fd})
	}
	if len(d.Fields) == 0 {
		return failure.Configuration("typesafe: object type %s has no selectable fields", d.ScalarName)
	}
	d.Kind = KindObject
	d.Nullable = true
	return nil
}

func (r *Resolver) enumValues(t reflect.Type) ([]string, bool) {
	if values, ok := r.reg.enum(t); ok {
		return values, true
	}
	if t.Implements(enumeratorType) {
		return reflect.Zero(t).Interface().(Enumerator).EnumValues(), true
	}
	return nil, false
}

// FieldTagName returns the GraphQL name of a struct field: the first element
// of its graphql tag, then of its json tag, else the field name with its
// first letter lower-cased. "-" means the field is not selected.
func FieldTagName(f reflect.StructField) string {
	for _, key := range []string{"graphql", "json"} {
		tag, ok := f.Tag.Lookup(key)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name != "" {
			return name
		}
	}
	return LowerFirst(f.Name)
}
