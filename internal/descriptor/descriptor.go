// Package descriptor classifies declared Go types into the descriptors that
// drive request derivation and response coercion.
//
// A Descriptor is computed once per type by a Resolver and is read-only
// afterwards, so it can be shared freely between concurrent calls.
package descriptor

import (
	"math/big"
	"reflect"
	"unicode"
	"unicode/utf8"
)

// Kind is the classification of a declared type. Exactly one applies.
type Kind int

const (
	KindBool Kind = iota + 1
	KindChar
	KindByte
	KindShort
	KindInt
	KindLong
	KindUnsigned
	KindFloat
	KindDouble
	KindBigInteger
	KindBigDecimal
	KindString
	KindEnum
	KindCustomScalar
	KindObject
	KindList
)

var kindNames = map[Kind]string{
	KindBool:         "Bool",
	KindChar:         "Char",
	KindByte:         "Byte",
	KindShort:        "Short",
	KindInt:          "Int",
	KindLong:         "Long",
	KindUnsigned:     "Unsigned",
	KindFloat:        "Float",
	KindDouble:       "Double",
	KindBigInteger:   "BigInteger",
	KindBigDecimal:   "BigDecimal",
	KindString:       "String",
	KindEnum:         "Enum",
	KindCustomScalar: "CustomScalar",
	KindObject:       "Object",
	KindList:         "List",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// IsInteger reports whether k is one of the bounded integer kinds.
func (k Kind) IsInteger() bool {
	switch k {
	case KindByte, KindShort, KindInt, KindLong, KindUnsigned:
		return true
	}
	return false
}

// Char is a single character. Its value must fit a UTF-16 code unit,
// [0, 0xFFFF].
type Char rune

// Bounds is the inclusive range accepted by a bounded kind.
type Bounds struct {
	Min, Max *big.Int
}

// Contains reports whether x lies within b.
func (b *Bounds) Contains(x *big.Int) bool {
	return x.Cmp(b.Min) >= 0 && x.Cmp(b.Max) <= 0
}

// Field is one selectable member of an object type.
type Field struct {
	// Name is the GraphQL field name.
	Name string

	// Index locates the struct field for reflect.Value.FieldByIndex.
	Index []int

	Descriptor *Descriptor
}

// Descriptor describes one declared type.
type Descriptor struct {
	Kind Kind

	// Type is the declared type, Base the same type with a pointer removed.
	Type reflect.Type
	Base reflect.Type

	// Pointer is set when Type is *Base.
	Pointer bool

	// Nullable is set when a null value binds to the zero value of Type
	// instead of failing.
	Nullable bool

	// TypeName is the name used in invalid-value diagnostics.
	TypeName string

	// ScalarName is the fully qualified name of Base.
	ScalarName string

	Elem       *Descriptor // KindList
	Fields     []Field     // KindObject
	Strategies []Strategy  // KindCustomScalar, in priority order
	EnumValues []string    // KindEnum
	Bounds     *Bounds     // KindChar and integer kinds
	Bits       int         // KindFloat and KindDouble
}

// Leaf returns the descriptor at the bottom of any list nesting.
func (d *Descriptor) Leaf() *Descriptor {
	for d.Kind == KindList {
		d = d.Elem
	}
	return d
}

// HasEnumValue reports whether s names a member of an enum descriptor.
func (d *Descriptor) HasEnumValue(s string) bool {
	for _, v := range d.EnumValues {
		if v == s {
			return true
		}
	}
	return false
}

// QualifiedName renders t with its full package path when it is a named
// type, and as reflect does otherwise.
func QualifiedName(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

func typeName(d *Descriptor) string {
	switch d.Kind {
	case KindBool:
		return "boolean"
	case KindChar:
		if d.Pointer {
			return "*char"
		}
		return "char"
	}
	if d.Pointer {
		return "*" + QualifiedName(d.Base)
	}
	return d.Base.String()
}

func signedBounds(bits int) *Bounds {
	max := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	min := new(big.Int).Neg(max)
	max.Sub(max, big.NewInt(1))
	return &Bounds{Min: min, Max: max}
}

func unsignedBounds(bits int) *Bounds {
	max := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	max.Sub(max, big.NewInt(1))
	return &Bounds{Min: big.NewInt(0), Max: max}
}

var charBounds = &Bounds{Min: big.NewInt(0), Max: big.NewInt(0xFFFF)}

// LowerFirst lower-cases the first letter of an exported Go identifier.
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
