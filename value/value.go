// Package value provides the immutable, order-preserving tree used to hold a
// decoded GraphQL response before it is bound to Go types.
//
// Numbers are never converted to a binary floating point representation:
// a Number node keeps the exact text it was decoded from so that integer
// bounds and arbitrary precision can be checked by the consumer. Object
// nodes remember the order their fields appeared in for rendering, while
// lookup by name is independent of that order.
package value

import (
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies the variant held by a Node.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Node is a single element of a value tree. The zero Node is Null.
//
// Nodes are immutable once constructed and safe to share between
// goroutines.
type Node struct {
	kind  Kind
	b     bool
	text  string
	items []Node
	obj   *orderedmap.OrderedMap[string, Node]
}

// Field is a named member of an object node.
type Field struct {
	Name  string
	Value Node
}

// Null returns the null node.
func Null() Node { return Node{} }

// Bool returns a boolean node.
func Bool(b bool) Node { return Node{kind: KindBool, b: b} }

// Number returns a number node holding text verbatim. The text is not
// validated here; Parse only produces syntactically valid numbers.
func Number(text string) Node { return Node{kind: KindNumber, text: text} }

// String returns a string node.
func String(s string) Node { return Node{kind: KindString, text: s} }

// List returns a list node holding a copy of items.
func List(items ...Node) Node {
	return Node{kind: KindList, items: append([]Node(nil), items...)}
}

// Object returns an object node with fields in the given order. A repeated
// name keeps its first position and its last value.
func Object(fields ...Field) Node {
	om := orderedmap.New[string, Node](len(fields))
	for _, f := range fields {
		om.Set(f.Name, f.Value)
	}
	return Node{kind: KindObject, obj: om}
}

// Kind reports the variant of n.
func (n Node) Kind() Kind { return n.kind }

// IsNull reports whether n is the null node.
func (n Node) IsNull() bool { return n.kind == KindNull }

// Bool returns the boolean held by a bool node and whether n is one.
func (n Node) Bool() (bool, bool) { return n.b, n.kind == KindBool }

// Text returns the exact text of a number node or the content of a string
// node. It returns "" for every other kind.
func (n Node) Text() string {
	if n.kind == KindNumber || n.kind == KindString {
		return n.text
	}
	return ""
}

// Len returns the number of elements of a list or fields of an object.
func (n Node) Len() int {
	switch n.kind {
	case KindList:
		return len(n.items)
	case KindObject:
		return n.obj.Len()
	default:
		return 0
	}
}

// Index returns the i-th element of a list node. It panics if n is not a
// list or i is out of range.
func (n Node) Index(i int) Node {
	if n.kind != KindList {
		panic("value: Index on " + n.kind.String() + " node")
	}
	return n.items[i]
}

// Items iterates the elements of a list node in order.
func (n Node) Items() iter.Seq2[int, Node] {
	return func(yield func(int, Node) bool) {
		if n.kind != KindList {
			return
		}
		for i, item := range n.items {
			if !yield(i, item) {
				return
			}
		}
	}
}

// Field looks up a member of an object node by its exact name.
func (n Node) Field(name string) (Node, bool) {
	if n.kind != KindObject {
		return Node{}, false
	}
	return n.obj.Get(name)
}

// Fields iterates the members of an object node in data order.
func (n Node) Fields() iter.Seq2[string, Node] {
	return func(yield func(string, Node) bool) {
		if n.kind != KindObject {
			return
		}
		for p := n.obj.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}
