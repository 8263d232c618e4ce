// Package boundary assembles area geometry from closed ways and
// multipolygon or boundary relations.
//
// Broken boundaries are common in real data, so assembly never fails hard:
// FromWay and FromRelation report "no polygon" and the reason is available
// from Assemble for data quality reports.
package boundary

import (
	"errors"
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"go.uber.org/zap"

	"github.com/wegman-software/osmgraph/internal/element"
	"github.com/wegman-software/osmgraph/internal/geometry"
	"github.com/wegman-software/osmgraph/internal/logger"
)

// ErrNotArea is returned for elements that cannot describe an area at all,
// such as nodes.
var ErrNotArea = errors.New("element cannot form an area")

// Role names used for ring assembly. An empty role is treated as outer.
const (
	RoleOuter = "outer"
	RoleInner = "inner"
)

// Assemble builds the multipolygon of a closed way or a relation, or
// returns why it could not.
func Assemble(e element.Element) (*geometry.MultiPolygon, error) {
	switch v := e.(type) {
	case *element.Way:
		return assembleWay(v)
	case *element.Relation:
		return assembleRelation(v)
	default:
		return nil, ErrNotArea
	}
}

// FromWay returns the single-ring multipolygon of a closed way.
func FromWay(w *element.Way) (*geometry.MultiPolygon, bool) {
	mp, err := assembleWay(w)
	if err != nil {
		logger.Get().Debug("No polygon for way", zap.Int64("id", w.ID()), zap.Error(err))
		return nil, false
	}
	return mp, true
}

// FromRelation assembles outer and inner rings from the relation's member
// ways.
func FromRelation(r *element.Relation) (*geometry.MultiPolygon, bool) {
	mp, err := assembleRelation(r)
	if err != nil {
		logger.Get().Debug("No polygon for relation", zap.Int64("id", r.ID()), zap.Error(err))
		return nil, false
	}
	return mp, true
}

func assembleWay(w *element.Way) (*geometry.MultiPolygon, error) {
	if !w.Closed() {
		return nil, fmt.Errorf("way %d is not closed", w.ID())
	}
	if len(w.Nodes()) < 4 {
		return nil, fmt.Errorf("way %d has only %d nodes", w.ID(), len(w.Nodes()))
	}
	return geometry.NewMultiPolygon(geometry.NewPolygon(w.Points())), nil
}

func assembleRelation(r *element.Relation) (*geometry.MultiPolygon, error) {
	var outer, inner []geometry.Segment
	for i, m := range r.Members() {
		if m.Type != osm.TypeWay {
			continue
		}
		var target *[]geometry.Segment
		switch m.Role {
		case RoleOuter, "":
			target = &outer
		case RoleInner:
			target = &inner
		default:
			continue
		}
		if !m.Resolved() {
			return nil, fmt.Errorf("member %d: way %d not loaded", i, m.Ref)
		}
		w, ok := m.Element.(*element.Way)
		if !ok {
			return nil, fmt.Errorf("member %d: %s is not a way", i, m.Element.Key())
		}
		if len(w.Nodes()) < 2 {
			return nil, fmt.Errorf("member %d: way %d has %d nodes", i, w.ID(), len(w.Nodes()))
		}
		*target = append(*target, geometry.Segment{Refs: w.Refs(), Points: w.Points()})
	}

	outerRings, err := geometry.AssembleRings(outer)
	if err != nil {
		return nil, fmt.Errorf("outer rings: %w", err)
	}
	innerRings, err := geometry.AssembleRings(inner)
	if err != nil {
		return nil, fmt.Errorf("inner rings: %w", err)
	}
	mp, err := geometry.BuildMultiPolygon(outerRings, innerRings)
	if err != nil {
		return nil, fmt.Errorf("relation %d: %w", r.ID(), err)
	}
	return mp, nil
}

// Boundary is an element with its assembled area.
type Boundary struct {
	Element element.Element
	Shape   *geometry.MultiPolygon
}

// Failure records an element that did not assemble.
type Failure struct {
	Element element.Element
	Err     error
}

// Collect assembles every way and relation in elements. Nodes are ignored.
func Collect(elements []element.Element) ([]Boundary, []Failure) {
	var ok []Boundary
	var failed []Failure
	for _, e := range elements {
		if e.Type() == osm.TypeNode {
			continue
		}
		mp, err := Assemble(e)
		if err != nil {
			failed = append(failed, Failure{Element: e, Err: err})
			continue
		}
		ok = append(ok, Boundary{Element: e, Shape: mp})
	}
	return ok, failed
}

// Parent is a boundary that covers another one.
type Parent struct {
	Boundary Boundary
	Coverage float64
}

// Parents returns the candidates covering at least threshold of child's
// area, best coverage first. Candidates whose bounds miss the child are
// skipped without sampling.
func Parents(child Boundary, candidates []Boundary, threshold float64, density int) []Parent {
	var out []Parent
	cb := child.Shape.Bound()
	for _, c := range candidates {
		if c.Element == child.Element || !c.Shape.Bound().Intersects(cb) {
			continue
		}
		cov := geometry.Coverage(child.Shape, c.Shape, density)
		if cov >= threshold {
			out = append(out, Parent{Boundary: c, Coverage: cov})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Coverage > out[j].Coverage
	})
	return out
}

// Set is the union of several boundaries. It satisfies
// geometry.Container, so it can back an "inside region" filter.
type Set []Boundary

func (s Set) Contains(p orb.Point) bool {
	for _, b := range s {
		if b.Shape.Contains(p) {
			return true
		}
	}
	return false
}

func (s Set) Bound() orb.Bound {
	if len(s) == 0 {
		return orb.Bound{}
	}
	bound := s[0].Shape.Bound()
	for _, b := range s[1:] {
		bound = bound.Union(b.Shape.Bound())
	}
	return bound
}
