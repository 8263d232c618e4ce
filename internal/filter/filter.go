// Package filter provides composable predicates over single elements.
//
// A Filter is a closed set of operations evaluated by one switch, so the
// collection hints used for query planning are derived in the same place
// as matching and cannot drift from it.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"github.com/wegman-software/osmgraph/internal/element"
)

type op int

const (
	opAll op = iota
	opKinds
	opHasTag
	opHasValue
	opHasAnyTag
	opLacksTag
	opSplitRegexp
	opSplitFunc
	opAnd
	opOr
	opNot
	opCustom
)

// Filter is an immutable predicate over one element. The zero value
// matches everything.
type Filter struct {
	op       op
	kinds    Kinds
	key      string
	keys     []string
	values   []string
	re       *regexp.Regexp
	valueFn  func(string) bool
	fn       func(element.Element) bool
	children []Filter
	hint     Hint
	name     string
}

// Matches reports whether e satisfies the filter.
func (f Filter) Matches(e element.Element) bool {
	switch f.op {
	case opAll:
		return true
	case opKinds:
		return f.kinds.Has(e.Type())
	case opHasTag:
		return e.HasTag(f.key)
	case opHasValue:
		v, ok := e.Tag(f.key)
		if !ok {
			return false
		}
		for _, want := range f.values {
			if v == want {
				return true
			}
		}
		return false
	case opHasAnyTag:
		for _, k := range f.keys {
			if e.HasTag(k) {
				return true
			}
		}
		return false
	case opLacksTag:
		return !e.HasTag(f.key)
	case opSplitRegexp:
		return splitAll(e, f.key, f.re.MatchString)
	case opSplitFunc:
		return splitAll(e, f.key, f.valueFn)
	case opAnd:
		for _, c := range f.children {
			if !c.Matches(e) {
				return false
			}
		}
		return true
	case opOr:
		for _, c := range f.children {
			if c.Matches(e) {
				return true
			}
		}
		return false
	case opNot:
		return !f.children[0].Matches(e)
	case opCustom:
		return f.fn(e)
	default:
		panic(fmt.Sprintf("filter: unknown op %d", f.op))
	}
}

// splitAll requires the tag to be present with at least one value and
// every semicolon separated value to pass.
func splitAll(e element.Element, key string, pass func(string) bool) bool {
	v, ok := e.Tag(key)
	if !ok {
		return false
	}
	values := element.SplitValues(v)
	if len(values) == 0 {
		return false
	}
	for _, part := range values {
		if !pass(part) {
			return false
		}
	}
	return true
}

// All matches every element.
func All() Filter { return Filter{op: opAll} }

// IsNode matches nodes.
func IsNode() Filter { return OfKinds(Nodes) }

// IsWay matches ways.
func IsWay() Filter { return OfKinds(Ways) }

// IsRelation matches relations.
func IsRelation() Filter { return OfKinds(Relations) }

// IsNodeOrWay matches nodes and ways.
func IsNodeOrWay() Filter { return OfKinds(Nodes | Ways) }

// OfKinds matches elements whose type is in kinds.
func OfKinds(kinds Kinds) Filter { return Filter{op: opKinds, kinds: kinds} }

// HasTag matches elements carrying key with any value.
func HasTag(key string) Filter { return Filter{op: opHasTag, key: key} }

// HasValue matches elements whose key equals one of values.
func HasValue(key string, values ...string) Filter {
	return Filter{op: opHasValue, key: key, values: values}
}

// HasAnyTag matches elements carrying at least one of keys.
func HasAnyTag(keys ...string) Filter { return Filter{op: opHasAnyTag, keys: keys} }

// LacksTag matches elements without key.
func LacksTag(key string) Filter { return Filter{op: opLacksTag, key: key} }

// SplitValuesMatch matches elements where key is present and every
// semicolon separated value matches re.
func SplitValuesMatch(key string, re *regexp.Regexp) Filter {
	return Filter{op: opSplitRegexp, key: key, re: re}
}

// SplitValuesSatisfy is SplitValuesMatch with an arbitrary value check.
func SplitValuesSatisfy(key string, pass func(string) bool) Filter {
	return Filter{op: opSplitFunc, key: key, valueFn: pass}
}

// And matches when every filter matches, stopping at the first miss. An
// empty And matches everything.
func And(filters ...Filter) Filter { return Filter{op: opAnd, children: filters} }

// Or matches when any filter matches, stopping at the first hit. An empty
// Or matches nothing.
func Or(filters ...Filter) Filter { return Filter{op: opOr, children: filters} }

// Not inverts f.
func Not(f Filter) Filter { return Filter{op: opNot, children: []Filter{f}} }

// Custom wraps an arbitrary predicate. The optional hint narrows which
// collections a store scans; it must be implied by fn.
func Custom(name string, fn func(element.Element) bool, hint ...Hint) Filter {
	h := NoHint
	if len(hint) > 0 {
		h = hint[0]
	}
	return Filter{op: opCustom, fn: fn, hint: h, name: name}
}

// Inside matches elements whose representative coordinate lies within
// area, e.g. a country boundary or an orb.Bound.
func Inside(area interface{ Contains(orb.Point) bool }) Filter {
	return Custom("inside", func(e element.Element) bool {
		p, ok := e.Centroid()
		return ok && area.Contains(p)
	})
}

// String describes the filter for logs.
func (f Filter) String() string {
	switch f.op {
	case opAll:
		return "all"
	case opKinds:
		return "kind(" + f.kinds.String() + ")"
	case opHasTag:
		return "has(" + f.key + ")"
	case opHasValue:
		return f.key + "=" + strings.Join(f.values, "|")
	case opHasAnyTag:
		return "any(" + strings.Join(f.keys, ",") + ")"
	case opLacksTag:
		return "lacks(" + f.key + ")"
	case opSplitRegexp:
		return f.key + "~" + f.re.String()
	case opSplitFunc:
		return f.key + "~func"
	case opAnd, opOr:
		parts := make([]string, len(f.children))
		for i, c := range f.children {
			parts[i] = c.String()
		}
		sep := " and "
		if f.op == opOr {
			sep = " or "
		}
		return "(" + strings.Join(parts, sep) + ")"
	case opNot:
		return "not " + f.children[0].String()
	case opCustom:
		return f.name
	default:
		return "?"
	}
}

// Kinds is a set of element types.
type Kinds uint8

const (
	Nodes Kinds = 1 << iota
	Ways
	Relations

	AllKinds = Nodes | Ways | Relations
)

// KindOf returns the set holding only t.
func KindOf(t osm.Type) Kinds {
	switch t {
	case osm.TypeNode:
		return Nodes
	case osm.TypeWay:
		return Ways
	case osm.TypeRelation:
		return Relations
	default:
		return 0
	}
}

// Has reports whether t is in the set.
func (k Kinds) Has(t osm.Type) bool { return k&KindOf(t) != 0 }

// Single returns the only type in the set, if there is exactly one.
func (k Kinds) Single() (osm.Type, bool) {
	switch k {
	case Nodes:
		return osm.TypeNode, true
	case Ways:
		return osm.TypeWay, true
	case Relations:
		return osm.TypeRelation, true
	default:
		return "", false
	}
}

func (k Kinds) String() string {
	var parts []string
	for _, t := range []osm.Type{osm.TypeNode, osm.TypeWay, osm.TypeRelation} {
		if k.Has(t) {
			parts = append(parts, string(t))
		}
	}
	return strings.Join(parts, ",")
}
