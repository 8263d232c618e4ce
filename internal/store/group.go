package store

import (
	"github.com/wegman-software/osmgraph/internal/element"
)

// Group is a set of elements sharing a tag value. After
// CombineBySimilarValues a group may carry several values; the first is
// its representative.
type Group struct {
	Values   []string
	elements []element.Element
	master   *Store
}

// Value returns the representative value.
func (g *Group) Value() string { return g.Values[0] }

// Elements returns the grouped elements in first seen order.
func (g *Group) Elements() []element.Element { return g.elements }

// Len returns the number of grouped elements.
func (g *Group) Len() int { return len(g.elements) }

// Store returns the group as an extract.
func (g *Group) Store() *Store {
	return newExtract(g.master, append([]element.Element(nil), g.elements...))
}

// Groups is an ordered list of groups.
type Groups struct {
	groups  []*Group
	byValue map[string]*Group
	master  *Store
}

func newGroups(master *Store) *Groups {
	return &Groups{byValue: make(map[string]*Group), master: master}
}

func (gs *Groups) add(g *Group) {
	gs.groups = append(gs.groups, g)
	for _, v := range g.Values {
		if _, ok := gs.byValue[v]; !ok {
			gs.byValue[v] = g
		}
	}
}

// All returns the groups in first seen order.
func (gs *Groups) All() []*Group { return gs.groups }

// Len returns the number of groups.
func (gs *Groups) Len() int { return len(gs.groups) }

// Get returns the group holding value.
func (gs *Groups) Get(value string) (*Group, bool) {
	g, ok := gs.byValue[value]
	return g, ok
}

// GroupByValue buckets the elements by the value of the first key in keys
// that they carry. With split the value is divided at semicolons and the
// element joins one group per distinct part. Elements without any of the
// keys are left out.
func (s *Store) GroupByValue(keys []string, split bool) *Groups {
	gs := newGroups(s.Master())
	for _, e := range s.tagged {
		value, ok := firstValue(e, keys)
		if !ok {
			continue
		}

		values := []string{value}
		if split {
			values = dedupStrings(element.SplitValues(value))
		}
		for _, v := range values {
			g, ok := gs.byValue[v]
			if !ok {
				g = &Group{Values: []string{v}, master: gs.master}
				gs.add(g)
			}
			g.elements = append(g.elements, e)
		}
	}
	return gs
}

func firstValue(e element.Element, keys []string) (string, bool) {
	for _, k := range keys {
		if v, ok := e.Tag(k); ok {
			return v, true
		}
	}
	return "", false
}

func dedupStrings(values []string) []string {
	out := values[:0]
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// CombineBySimilarValues merges groups whose values match in one left to
// right pass. Each group not yet absorbed becomes a representative and
// absorbs every later unabsorbed group whose value matches its own value.
// Matching is not transitive: a group absorbed into a representative does
// not pull in groups that only match it.
func (gs *Groups) CombineBySimilarValues(match func(a, b string) bool) *Groups {
	out := newGroups(gs.master)
	absorbed := make([]bool, len(gs.groups))

	for i, rep := range gs.groups {
		if absorbed[i] {
			continue
		}
		merged := &Group{
			Values:   append([]string(nil), rep.Values...),
			elements: append([]element.Element(nil), rep.elements...),
			master:   gs.master,
		}
		seen := make(map[element.Element]bool, len(rep.elements))
		for _, e := range rep.elements {
			seen[e] = true
		}

		for j := i + 1; j < len(gs.groups); j++ {
			if absorbed[j] || !match(rep.Value(), gs.groups[j].Value()) {
				continue
			}
			absorbed[j] = true
			other := gs.groups[j]
			merged.Values = append(merged.Values, other.Values...)
			for _, e := range other.elements {
				if !seen[e] {
					seen[e] = true
					merged.elements = append(merged.elements, e)
				}
			}
		}
		out.add(merged)
	}
	return out
}
