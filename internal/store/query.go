package store

import (
	"github.com/wegman-software/osmgraph/internal/element"
	"github.com/wegman-software/osmgraph/internal/filter"
)

// scan calls fn for the elements of the smallest collection that can hold
// matches for h, until fn returns false.
func (s *Store) scan(h filter.Hint, fn func(element.Element) bool) {
	if h.Kinds == 0 {
		return
	}

	if _, single := h.Kinds.Single(); single {
		if !h.Tagged || s.kindLen(h.Kinds) <= len(s.tagged) {
			s.scanKind(h.Kinds, fn)
			return
		}
	}

	list := s.elements
	if h.Tagged {
		list = s.tagged
	}
	for _, e := range list {
		if !fn(e) {
			return
		}
	}
}

func (s *Store) kindLen(k filter.Kinds) int {
	switch k {
	case filter.Nodes:
		return len(s.nodes)
	case filter.Ways:
		return len(s.ways)
	case filter.Relations:
		return len(s.relations)
	}
	return len(s.elements)
}

func (s *Store) scanKind(k filter.Kinds, fn func(element.Element) bool) {
	switch k {
	case filter.Nodes:
		for _, n := range s.nodes {
			if !fn(n) {
				return
			}
		}
	case filter.Ways:
		for _, w := range s.ways {
			if !fn(w) {
				return
			}
		}
	case filter.Relations:
		for _, r := range s.relations {
			if !fn(r) {
				return
			}
		}
	}
}

// Filter returns an extract of the elements matching every filter. Only
// the collections allowed by the filters' hints are scanned.
func (s *Store) Filter(filters ...filter.Filter) *Store {
	f := filter.And(filters...)
	var out []element.Element
	s.scan(f.Hint(), func(e element.Element) bool {
		if f.Matches(e) {
			out = append(out, e)
		}
		return true
	})
	return newExtract(s, out)
}

// FilterBatch evaluates several filter sets in one pass and returns one
// extract per set, in order.
func (s *Store) FilterBatch(sets ...[]filter.Filter) []*Store {
	compiled := make([]filter.Filter, len(sets))
	scanHint := filter.Hint{Tagged: true}
	for i, set := range sets {
		compiled[i] = filter.And(set...)
		h := compiled[i].Hint()
		scanHint.Kinds |= h.Kinds
		scanHint.Tagged = scanHint.Tagged && h.Tagged
	}

	results := make([][]element.Element, len(sets))
	s.scan(scanHint, func(e element.Element) bool {
		for i, f := range compiled {
			if f.Matches(e) {
				results[i] = append(results[i], e)
			}
		}
		return true
	})

	out := make([]*Store, len(sets))
	for i := range results {
		out[i] = newExtract(s, results[i])
	}
	return out
}

// Find returns the first element matching every filter.
func (s *Store) Find(filters ...filter.Filter) (element.Element, bool) {
	f := filter.And(filters...)
	var found element.Element
	s.scan(f.Hint(), func(e element.Element) bool {
		if f.Matches(e) {
			found = e
			return false
		}
		return true
	})
	return found, found != nil
}

// Subtract returns the elements of s that are not in other, compared by
// type and id.
func (s *Store) Subtract(other *Store) *Store {
	drop := make(map[element.Key]struct{}, other.Len())
	for _, e := range other.elements {
		drop[e.Key()] = struct{}{}
	}
	out := make([]element.Element, 0, len(s.elements))
	for _, e := range s.elements {
		if _, ok := drop[e.Key()]; !ok {
			out = append(out, e)
		}
	}
	return newExtract(s, out)
}

// UniqueValues returns the distinct values of key in first seen order.
func (s *Store) UniqueValues(key string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, e := range s.tagged {
		v, ok := e.Tag(key)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values
}
