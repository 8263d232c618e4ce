package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Container is anything that can answer point containment, e.g. a country
// boundary.
type Container interface {
	Contains(p orb.Point) bool
	Bound() orb.Bound
}

// Polygon is a single outer ring with optional holes.
type Polygon struct {
	poly  orb.Polygon
	bound orb.Bound
}

// NewPolygon creates a polygon from an outer ring and optional holes. Rings
// that are not closed are closed by repeating their first point.
func NewPolygon(outer []orb.Point, holes ...[]orb.Point) *Polygon {
	poly := make(orb.Polygon, 0, 1+len(holes))
	poly = append(poly, closeRing(outer))
	for _, h := range holes {
		poly = append(poly, closeRing(h))
	}
	return &Polygon{poly: poly, bound: poly.Bound()}
}

func closeRing(points []orb.Point) orb.Ring {
	ring := make(orb.Ring, len(points), len(points)+1)
	copy(ring, points)
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

// Contains reports whether p lies inside the outer ring and outside every
// hole. Points on the outer boundary count as inside.
func (p *Polygon) Contains(pt orb.Point) bool {
	if !p.bound.Contains(pt) {
		return false
	}
	return planar.PolygonContains(p.poly, pt)
}

func (p *Polygon) Bound() orb.Bound {
	return p.bound
}

// Area returns the planar area in square degrees.
func (p *Polygon) Area() float64 {
	return math.Abs(planar.Area(p.poly))
}

// Orb returns the underlying orb polygon.
func (p *Polygon) Orb() orb.Polygon {
	return p.poly
}

// MultiPolygon is one or more polygons, each with optional holes.
type MultiPolygon struct {
	polys orb.MultiPolygon
	bound orb.Bound
}

// NewMultiPolygon wraps already assembled polygons.
func NewMultiPolygon(polys ...*Polygon) *MultiPolygon {
	mp := make(orb.MultiPolygon, 0, len(polys))
	for _, p := range polys {
		mp = append(mp, p.poly)
	}
	return &MultiPolygon{polys: mp, bound: mp.Bound()}
}

func (m *MultiPolygon) Contains(pt orb.Point) bool {
	if !m.bound.Contains(pt) {
		return false
	}
	return planar.MultiPolygonContains(m.polys, pt)
}

func (m *MultiPolygon) Bound() orb.Bound {
	return m.bound
}

// Area returns the planar area in square degrees.
func (m *MultiPolygon) Area() float64 {
	return math.Abs(planar.Area(m.polys))
}

// Len returns the number of polygons.
func (m *MultiPolygon) Len() int {
	return len(m.polys)
}

// Orb returns the underlying orb multipolygon.
func (m *MultiPolygon) Orb() orb.MultiPolygon {
	return m.polys
}

// vertices returns every ring vertex, used as sample points for polygons too
// thin to catch any grid sample.
func (m *MultiPolygon) vertices() []orb.Point {
	var pts []orb.Point
	for _, poly := range m.polys {
		for _, ring := range poly {
			pts = append(pts, ring...)
		}
	}
	return pts
}
