package descriptor

import "reflect"

// Registry holds the user declarations that influence classification:
// custom scalar construction functions and enum member sets. It is filled
// before the first Resolve and must not be modified afterwards.
type Registry struct {
	scalars map[reflect.Type][]Candidate
	enums   map[reflect.Type][]string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		scalars: map[reflect.Type][]Candidate{},
		enums:   map[reflect.Type][]string{},
	}
}

// AddScalar declares t as a custom scalar constructed by the given
// candidates. Repeated calls append candidates in order. A pointer type is
// registered under its element type.
func (r *Registry) AddScalar(t reflect.Type, cands ...Candidate) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r.scalars[t] = append(r.scalars[t], cands...)
}

// AddEnum declares t as an enum with the given members.
func (r *Registry) AddEnum(t reflect.Type, values []string) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r.enums[t] = append([]string(nil), values...)
}

func (r *Registry) scalar(t reflect.Type) ([]Candidate, bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.scalars[t]
	return c, ok
}

func (r *Registry) enum(t reflect.Type) ([]string, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.enums[t]
	return v, ok
}
