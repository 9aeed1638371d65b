package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

var (
	// ErrMalformed is returned when the input is not a single JSON value.
	ErrMalformed = errors.New("value: malformed JSON")
	// ErrTooDeep is returned when nesting exceeds MaxDepth.
	ErrTooDeep = errors.New("value: nesting too deep")
)

// MaxDepth bounds the nesting of lists and objects accepted by Parse.
const MaxDepth = 1000

// Parse decodes a single JSON document into a Node. Numbers keep their
// exact source text and object fields keep their source order.
func Parse(data []byte) (Node, error) {
	// jsonparser tolerates a trailing comma in objects.
	if !json.Valid(data) {
		return Node{}, fmt.Errorf("%w: invalid document %.40q", ErrMalformed, data)
	}
	raw, typ, end, err := jsonparser.Get(data)
	if err != nil {
		return Node{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if end >= 0 && end <= len(data) {
		if rest := bytes.TrimSpace(data[end:]); len(rest) > 0 {
			return Node{}, fmt.Errorf("%w: unexpected data after value: %.20q", ErrMalformed, rest)
		}
	}
	return build(raw, typ, 0)
}

func build(raw []byte, typ jsonparser.ValueType, depth int) (Node, error) {
	if depth > MaxDepth {
		return Node{}, ErrTooDeep
	}
	switch typ {
	case jsonparser.Null:
		return Null(), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return Node{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return Bool(b), nil
	case jsonparser.Number:
		if !validNumber(raw) {
			return Node{}, fmt.Errorf("%w: invalid number %q", ErrMalformed, raw)
		}
		return Number(string(raw)), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return Node{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return String(s), nil
	case jsonparser.Array:
		return buildList(raw, depth)
	case jsonparser.Object:
		return buildObject(raw, depth)
	default:
		return Node{}, fmt.Errorf("%w: unexpected token %q", ErrMalformed, raw)
	}
}

func buildList(raw []byte, depth int) (Node, error) {
	var (
		items    []Node
		firstErr error
	)
	_, err := jsonparser.ArrayEach(raw, func(v []byte, typ jsonparser.ValueType, _ int, err error) {
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = fmt.Errorf("%w: %v", ErrMalformed, err)
			return
		}
		item, err := build(v, typ, depth+1)
		if err != nil {
			firstErr = err
			return
		}
		items = append(items, item)
	})
	if firstErr != nil {
		return Node{}, firstErr
	}
	if err != nil {
		return Node{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Node{kind: KindList, items: items}, nil
}

func buildObject(raw []byte, depth int) (Node, error) {
	var fields []Field
	err := jsonparser.ObjectEach(raw, func(k, v []byte, typ jsonparser.ValueType, _ int) error {
		name, err := jsonparser.ParseString(k)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		child, err := build(v, typ, depth+1)
		if err != nil {
			return err
		}
		fields = append(fields, Field{Name: name, Value: child})
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrMalformed) || errors.Is(err, ErrTooDeep) {
			return Node{}, err
		}
		return Node{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Object(fields...), nil
}

// validNumber checks b against the JSON number grammar:
// -? (0 | [1-9][0-9]*) (. [0-9]+)? ([eE] [+-]? [0-9]+)?
func validNumber(b []byte) bool {
	i := 0
	if i < len(b) && b[i] == '-' {
		i++
	}
	switch {
	case i < len(b) && b[i] == '0':
		i++
	case i < len(b) && b[i] >= '1' && b[i] <= '9':
		for i < len(b) && isDigit(b[i]) {
			i++
		}
	default:
		return false
	}
	if i < len(b) && b[i] == '.' {
		i++
		start := i
		for i < len(b) && isDigit(b[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		i++
		if i < len(b) && (b[i] == '+' || b[i] == '-') {
			i++
		}
		start := i
		for i < len(b) && isDigit(b[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	return i == len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
