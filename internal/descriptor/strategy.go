package descriptor

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
)

// StrategyKind names a way of constructing a custom scalar from text. The
// constant order is the priority order.
type StrategyKind int

const (
	StrategyOf StrategyKind = iota
	StrategyValueOf
	StrategyParse
	StrategyConstructor
)

var strategyPriority = []StrategyKind{StrategyOf, StrategyValueOf, StrategyParse, StrategyConstructor}

func (k StrategyKind) String() string {
	switch k {
	case StrategyOf:
		return "of"
	case StrategyValueOf:
		return "valueOf"
	case StrategyParse:
		return "parse"
	case StrategyConstructor:
		return "constructor"
	default:
		return fmt.Sprintf("StrategyKind(%d)", int(k))
	}
}

// Candidate is a registered construction function for a custom scalar.
// Several candidates of the same kind model overloads; Fn is inspected for
// its shape when the type is resolved.
type Candidate struct {
	Kind StrategyKind
	Fn   any
}

// Strategy is an applicable construction function bound to a scalar type.
type Strategy struct {
	Kind  StrategyKind
	build func(text string) (reflect.Value, error)
}

var (
	errNilResult = errors.New("descriptor: construction returned nil")

	textType            = reflect.TypeOf("")
	errorType           = reflect.TypeOf((*error)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// Build constructs a value of the scalar's base type from text. A panic
// inside the construction function is reported as an error.
func (s Strategy) Build(text string) (v reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = reflect.Value{}
			if e, ok := r.(error); ok {
				err = fmt.Errorf("%s panicked: %w", s.Kind, e)
				return
			}
			err = fmt.Errorf("%s panicked: %v", s.Kind, r)
		}
	}()
	return s.build(text)
}

func takesText(ft reflect.Type) bool {
	return ft.NumIn() == 1 && ft.In(0) == textType && !ft.IsVariadic()
}

// fromCandidate binds c to base when its function has an applicable shape:
// func(string) B or func(string) (B, error), where B is base or *base.
func fromCandidate(c Candidate, base reflect.Type) (Strategy, bool) {
	fv := reflect.ValueOf(c.Fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func || fv.IsNil() {
		return Strategy{}, false
	}
	ft := fv.Type()
	if !takesText(ft) {
		return Strategy{}, false
	}
	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			return Strategy{}, false
		}
	default:
		return Strategy{}, false
	}
	var ptr bool
	switch out := ft.Out(0); {
	case out == base:
	case out.Kind() == reflect.Pointer && out.Elem() == base:
		ptr = true
	default:
		return Strategy{}, false
	}
	return Strategy{Kind: c.Kind, build: func(text string) (reflect.Value, error) {
		res := fv.Call([]reflect.Value{reflect.ValueOf(text)})
		if len(res) == 2 && !res[1].IsNil() {
			return reflect.Value{}, res[1].Interface().(error)
		}
		v := res[0]
		if ptr {
			if v.IsNil() {
				return reflect.Value{}, errNilResult
			}
			v = v.Elem()
		}
		return v, nil
	}}, true
}

func textUnmarshalerStrategy(base reflect.Type) Strategy {
	return Strategy{Kind: StrategyConstructor, build: func(text string) (reflect.Value, error) {
		p := reflect.New(base)
		if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
			return reflect.Value{}, err
		}
		return p.Elem(), nil
	}}
}

func implementsTextUnmarshaler(t reflect.Type) bool {
	return reflect.PointerTo(t).Implements(textUnmarshalerType)
}

// discover orders the applicable strategies of base by priority. Within a
// kind the first applicable candidate in registration order wins. The
// valueOf group is skipped entirely when any of its overloads does not take
// a single text argument, so an ambiguous overload set never silently
// selects the wrong function.
func discover(base reflect.Type, cands []Candidate) []Strategy {
	var out []Strategy
	for _, kind := range strategyPriority {
		var group []Candidate
		for _, c := range cands {
			if c.Kind == kind {
				group = append(group, c)
			}
		}
		if kind == StrategyValueOf && hasNonTextOverload(group) {
			continue
		}
		for _, c := range group {
			if s, ok := fromCandidate(c, base); ok {
				out = append(out, s)
				break
			}
		}
	}
	if implementsTextUnmarshaler(base) {
		out = append(out, textUnmarshalerStrategy(base))
	}
	return out
}

func hasNonTextOverload(group []Candidate) bool {
	for _, c := range group {
		fv := reflect.ValueOf(c.Fn)
		if !fv.IsValid() || fv.Kind() != reflect.Func {
			continue
		}
		if !takesText(fv.Type()) {
			return true
		}
	}
	return false
}
