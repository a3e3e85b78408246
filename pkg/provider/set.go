package provider

import (
	"maps"
	"slices"
)

// Set holds the providers built at startup. It is immutable.
type Set struct {
	providers map[Kind]Provider
}

// NewSet builds a set from providers. A later provider replaces an earlier
// one of the same kind.
func NewSet(providers ...Provider) *Set {
	s := &Set{providers: make(map[Kind]Provider, len(providers))}
	for _, p := range providers {
		s.providers[p.Kind()] = p
	}
	return s
}

// Get returns the provider of kind.
func (s *Set) Get(kind Kind) (Provider, bool) {
	if s == nil {
		return nil, false
	}
	p, ok := s.providers[kind]
	return p, ok
}

// Kinds returns the kinds in the set, sorted.
func (s *Set) Kinds() []Kind {
	if s == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(s.providers))
}

// Len returns the number of providers.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.providers)
}

// Restrict returns a view exposing only the given kinds.
func (s *Set) Restrict(kinds []Kind) View {
	v := View{providers: make(map[Kind]Provider, len(kinds))}
	for _, k := range kinds {
		if p, ok := s.Get(k); ok {
			v.providers[k] = p
		}
	}
	return v
}

// View is a read-only subset of a Set.
type View struct {
	providers map[Kind]Provider
}

// Get returns the provider of kind if it is visible.
func (v View) Get(kind Kind) (Provider, bool) {
	p, ok := v.providers[kind]
	return p, ok
}

// Kinds returns the visible kinds, sorted.
func (v View) Kinds() []Kind {
	return slices.Sorted(maps.Keys(v.providers))
}
