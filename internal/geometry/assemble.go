package geometry

import (
	"fmt"
	"slices"
	"sort"

	"github.com/paulmach/orb"
)

// Segment is a polyline contributed by one way: the node refs and their
// positions, in order. Refs are used to join segments, points to build rings.
type Segment struct {
	Refs   []int64
	Points []orb.Point
}

func (s Segment) closed() bool {
	return len(s.Refs) >= 4 && s.Refs[0] == s.Refs[len(s.Refs)-1]
}

func (s Segment) first() int64 { return s.Refs[0] }
func (s Segment) last() int64  { return s.Refs[len(s.Refs)-1] }

func (s Segment) clone() Segment {
	return Segment{Refs: slices.Clone(s.Refs), Points: slices.Clone(s.Points)}
}

func (s Segment) reversed() Segment {
	r := s.clone()
	slices.Reverse(r.Refs)
	slices.Reverse(r.Points)
	return r
}

// join appends other to s, dropping the shared end node.
func (s Segment) join(other Segment) Segment {
	return Segment{
		Refs:   append(s.Refs, other.Refs[1:]...),
		Points: append(s.Points, other.Points[1:]...),
	}
}

// AssembleRings merges segments into closed rings by joining shared end
// nodes, reversing segments where needed. It fails when any segment cannot
// be closed.
func AssembleRings(segments []Segment) ([]orb.Ring, error) {
	var rings []orb.Ring
	var open []Segment

	for _, s := range segments {
		if len(s.Refs) < 2 || len(s.Refs) != len(s.Points) {
			return nil, fmt.Errorf("segment with %d refs and %d points", len(s.Refs), len(s.Points))
		}
		if s.closed() {
			rings = append(rings, orb.Ring(slices.Clone(s.Points)))
			continue
		}
		open = append(open, s.clone())
	}

	for len(open) > 0 {
		cur := open[0]
		open = open[1:]
		for !cur.closed() {
			idx := -1
			for i, s := range open {
				switch {
				case s.first() == cur.last():
					cur = cur.join(s)
				case s.last() == cur.last():
					cur = cur.join(s.reversed())
				case s.last() == cur.first():
					cur = s.clone().join(cur)
				case s.first() == cur.first():
					cur = s.reversed().join(cur)
				default:
					continue
				}
				idx = i
				break
			}
			if idx < 0 {
				return nil, fmt.Errorf("ring starting at node %d is not closed", cur.first())
			}
			open = append(open[:idx], open[idx+1:]...)
		}
		rings = append(rings, orb.Ring(cur.Points))
	}
	return rings, nil
}

// BuildMultiPolygon assigns each inner ring to the smallest outer ring that
// contains it and returns the resulting multipolygon. Inner rings outside
// every outer ring are an error.
func BuildMultiPolygon(outer, inner []orb.Ring) (*MultiPolygon, error) {
	if len(outer) == 0 {
		return nil, fmt.Errorf("no outer ring")
	}

	shells := make([]*Polygon, len(outer))
	for i, r := range outer {
		shells[i] = NewPolygon(r)
	}
	// smallest first, so the innermost containing shell wins
	order := make([]int, len(shells))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return shells[order[a]].Area() < shells[order[b]].Area()
	})

	holes := make([][][]orb.Point, len(shells))
	for n, hole := range inner {
		owner := -1
		for _, i := range order {
			if ringInside(hole, shells[i]) {
				owner = i
				break
			}
		}
		if owner < 0 {
			return nil, fmt.Errorf("inner ring %d is outside all outer rings", n)
		}
		holes[owner] = append(holes[owner], hole)
	}

	polys := make([]*Polygon, len(outer))
	for i, r := range outer {
		polys[i] = NewPolygon(r, holes[i]...)
	}
	return NewMultiPolygon(polys...), nil
}

// ringInside reports whether any vertex of ring lies within shell. Inner
// rings commonly share boundary vertices with their outer ring, so a single
// contained vertex is enough.
func ringInside(ring orb.Ring, shell *Polygon) bool {
	for _, p := range ring {
		if shell.Contains(p) {
			return true
		}
	}
	return false
}
