package geometry

import "github.com/paulmach/orb"

// DefaultCoverageDensity is the number of samples along each axis of the
// bounding box used by Coverage when no density is given.
const DefaultCoverageDensity = 64

// Coverage estimates the fraction of a's area that is also inside b, in
// [0, 1]. It samples the centers of a density x density grid over a's
// bounding box and counts how many of the samples inside a are inside b.
//
// Only cells straddling a boundary can be misclassified, so the absolute
// error is bounded by roughly (perimeter of a + perimeter of b within a)
// times the cell diagonal, divided by the area of a. When a is too thin to
// catch any grid sample its vertices are used instead.
func Coverage(a *MultiPolygon, b Container, density int) float64 {
	if a == nil || b == nil || a.Len() == 0 {
		return 0
	}
	if density <= 0 {
		density = DefaultCoverageDensity
	}

	bound := a.Bound()
	if !bound.Intersects(b.Bound()) {
		return 0
	}

	dx := (bound.Max.Lon() - bound.Min.Lon()) / float64(density)
	dy := (bound.Max.Lat() - bound.Min.Lat()) / float64(density)

	inside, covered := 0, 0
	for i := 0; i < density; i++ {
		lon := bound.Min.Lon() + (float64(i)+0.5)*dx
		for j := 0; j < density; j++ {
			p := orb.Point{lon, bound.Min.Lat() + (float64(j)+0.5)*dy}
			if !a.Contains(p) {
				continue
			}
			inside++
			if b.Contains(p) {
				covered++
			}
		}
	}

	if inside == 0 {
		for _, p := range a.vertices() {
			inside++
			if b.Contains(p) {
				covered++
			}
		}
	}
	if inside == 0 {
		return 0
	}
	return float64(covered) / float64(inside)
}
