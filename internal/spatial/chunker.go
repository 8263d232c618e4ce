// Package spatial buckets elements by coordinate for nearest-element and
// radius queries.
package spatial

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/wegman-software/osmgraph/internal/element"
	"github.com/wegman-software/osmgraph/internal/geometry"
)

// DefaultCellSize is the grid cell edge in degrees, about 5.5 km of
// latitude.
const DefaultCellSize = 0.05

type cell struct {
	x, y int
}

type entry struct {
	el element.Element
	pt orb.Point
}

// Hit is one query result.
type Hit struct {
	Element  element.Element
	Distance float64 // meters
}

// Chunker is a fixed-size grid over element centroids. It is immutable
// once built.
type Chunker struct {
	cellSize float64
	cells    map[cell][]entry
	count    int

	// extent of occupied cells and coordinates
	min, max       cell
	minLon, maxLon float64
	maxAbsLat      float64
}

// New indexes every element that has a centroid. A non-positive cellSize
// selects DefaultCellSize.
func New(elements []element.Element, cellSize float64) *Chunker {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	c := &Chunker{
		cellSize: cellSize,
		cells:    make(map[cell][]entry),
		minLon:   math.Inf(1),
		maxLon:   math.Inf(-1),
	}
	first := true
	for _, el := range elements {
		pt, ok := el.Centroid()
		if !ok {
			continue
		}
		k := c.cellOf(pt)
		c.cells[k] = append(c.cells[k], entry{el: el, pt: pt})
		c.count++

		if first {
			c.min, c.max = k, k
			first = false
		} else {
			c.min.x, c.min.y = min(c.min.x, k.x), min(c.min.y, k.y)
			c.max.x, c.max.y = max(c.max.x, k.x), max(c.max.y, k.y)
		}
		c.minLon = math.Min(c.minLon, pt.Lon())
		c.maxLon = math.Max(c.maxLon, pt.Lon())
		c.maxAbsLat = math.Max(c.maxAbsLat, math.Abs(pt.Lat()))
	}
	return c
}

// Len returns the number of indexed elements.
func (c *Chunker) Len() int { return c.count }

// Cells returns the number of occupied cells.
func (c *Chunker) Cells() int { return len(c.cells) }

func (c *Chunker) cellOf(p orb.Point) cell {
	return cell{
		x: int(math.Floor(p.Lon() / c.cellSize)),
		y: int(math.Floor(p.Lat() / c.cellSize)),
	}
}

// Closest returns the element nearest to p and its distance in meters.
//
// With maxDistance > 0 only cells intersecting the bounding box of that
// radius are scanned. If the nearest scanned candidate lies beyond
// maxDistance the element is nil but its distance is still returned; if
// nothing was scanned the distance is +Inf. A maxDistance <= 0 or +Inf
// searches without limit.
func (c *Chunker) Closest(p orb.Point, maxDistance float64) (element.Element, float64) {
	if c.count == 0 {
		return nil, math.Inf(1)
	}
	if maxDistance <= 0 || math.IsInf(maxDistance, 1) {
		return c.closestUnbounded(p)
	}

	var best element.Element
	bestDist := math.Inf(1)
	c.visit(geometry.BoundAround(p, maxDistance), func(e entry) {
		if d := geometry.Distance(p, e.pt); closer(d, e.el, bestDist, best) {
			best, bestDist = e.el, d
		}
	})
	if bestDist > maxDistance {
		return nil, bestDist
	}
	return best, bestDist
}

// closestUnbounded walks square rings of cells outwards from p until no
// unvisited cell can hold anything closer than the best found.
func (c *Chunker) closestUnbounded(p orb.Point) (element.Element, float64) {
	var best element.Element
	bestDist := math.Inf(1)
	consider := func(e entry) {
		if d := geometry.Distance(p, e.pt); closer(d, e.el, bestDist, best) {
			best, bestDist = e.el, d
		}
	}

	center := c.cellOf(p)
	absLat := math.Max(c.maxAbsLat, math.Abs(p.Lat()))
	span := math.Max(c.maxLon, p.Lon()) - math.Min(c.minLon, p.Lon())

	for k := 0; ; k++ {
		// a ring holds 8k cells; past the number of occupied cells a
		// plain scan is cheaper
		if 8*k > len(c.cells) {
			for _, entries := range c.cells {
				for _, e := range entries {
					consider(e)
				}
			}
			return best, bestDist
		}

		c.ring(center, k, func(k cell) {
			for _, e := range c.cells[k] {
				consider(e)
			}
		})

		if center.x-k <= c.min.x && center.x+k >= c.max.x &&
			center.y-k <= c.min.y && center.y+k >= c.max.y {
			return best, bestDist
		}
		// cells in ring k+1 are at least k whole cells away from p
		offset := math.Min(float64(k)*c.cellSize, 360-span)
		if best != nil && geometry.MinDistanceForOffset(offset, absLat) >= bestDist {
			return best, bestDist
		}
	}
}

// closer orders candidates by distance, then by key so results do not
// depend on map iteration order.
func closer(d float64, el element.Element, bestDist float64, best element.Element) bool {
	if d != bestDist || best == nil {
		return d < bestDist
	}
	return keyLess(el.Key(), best.Key())
}

func keyLess(a, b element.Key) bool {
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	return a.ID < b.ID
}

// ring calls fn for every cell at Chebyshev distance k from center.
func (c *Chunker) ring(center cell, k int, fn func(cell)) {
	if k == 0 {
		fn(center)
		return
	}
	for dx := -k; dx <= k; dx++ {
		fn(cell{center.x + dx, center.y - k})
		fn(cell{center.x + dx, center.y + k})
	}
	for dy := -k + 1; dy <= k-1; dy++ {
		fn(cell{center.x - k, center.y + dy})
		fn(cell{center.x + k, center.y + dy})
	}
}

// visit calls fn for every entry in cells intersecting b.
func (c *Chunker) visit(b orb.Bound, fn func(entry)) {
	lo, hi := c.cellOf(b.Min), c.cellOf(b.Max)
	lo.x, lo.y = max(lo.x, c.min.x), max(lo.y, c.min.y)
	hi.x, hi.y = min(hi.x, c.max.x), min(hi.y, c.max.y)
	if lo.x > hi.x || lo.y > hi.y {
		return
	}

	if (hi.x-lo.x+1)*(hi.y-lo.y+1) > len(c.cells) {
		for k, entries := range c.cells {
			if k.x < lo.x || k.x > hi.x || k.y < lo.y || k.y > hi.y {
				continue
			}
			for _, e := range entries {
				fn(e)
			}
		}
		return
	}

	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for _, e := range c.cells[cell{x, y}] {
				fn(e)
			}
		}
	}
}

// Within returns every element at most maxDistance meters from p, nearest
// first. Equal distances are ordered by element key.
func (c *Chunker) Within(p orb.Point, maxDistance float64) []Hit {
	if maxDistance < 0 || math.IsNaN(maxDistance) {
		return nil
	}

	var hits []Hit
	c.visit(geometry.BoundAround(p, maxDistance), func(e entry) {
		if d := geometry.Distance(p, e.pt); d <= maxDistance {
			hits = append(hits, Hit{Element: e.el, Distance: d})
		}
	})
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return keyLess(hits[i].Element.Key(), hits[j].Element.Key())
	})
	return hits
}
