package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// MetersPerDegree is the length of one degree of latitude on the sphere
// used by Distance.
const MetersPerDegree = orb.EarthRadius * math.Pi / 180.0

// Distance returns the great-circle distance in meters between two points
// given as (lon, lat). It uses the haversine formula with a fixed earth
// radius, so results are reproducible across the whole program but are not
// ellipsoid accurate.
func Distance(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b)
}

// AngleBetweenSegments returns the angle in degrees in [0, 180] between the
// segments vertex->a and vertex->b. Coordinates are projected
// equirectangularly around the vertex, which is accurate for the short
// segments found at junctions. A zero-length segment yields 0.
func AngleBetweenSegments(a, vertex, b orb.Point) float64 {
	scale := math.Cos(vertex.Lat() * math.Pi / 180.0)

	ax, ay := (a.Lon()-vertex.Lon())*scale, a.Lat()-vertex.Lat()
	bx, by := (b.Lon()-vertex.Lon())*scale, b.Lat()-vertex.Lat()

	cross := ax*by - ay*bx
	dot := ax*bx + ay*by
	return math.Abs(math.Atan2(cross, dot)) * 180.0 / math.Pi
}

// BoundAround returns the bounding box of all points within meters of
// center. Near the poles, or when the radius wraps the globe, the longitude
// range is widened to the full [-180, 180].
func BoundAround(center orb.Point, meters float64) orb.Bound {
	if math.IsInf(meters, 1) || meters*2 >= math.Pi*orb.EarthRadius {
		return orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}
	}

	b := geo.NewBoundAroundPoint(center, meters)

	minLat := center.Lat() - meters/MetersPerDegree
	maxLat := center.Lat() + meters/MetersPerDegree
	if minLat <= -90 || maxLat >= 90 || math.IsNaN(b.Min.Lon()) || math.IsNaN(b.Max.Lon()) ||
		b.Min.Lon() > center.Lon() || b.Max.Lon() < center.Lon() {
		return orb.Bound{
			Min: orb.Point{-180, math.Max(minLat, -90)},
			Max: orb.Point{180, math.Min(maxLat, 90)},
		}
	}
	return orb.Bound{
		Min: orb.Point{b.Min.Lon(), minLat},
		Max: orb.Point{b.Max.Lon(), maxLat},
	}
}

// MinDistanceForOffset returns a lower bound, in meters, on the distance
// between two points whose latitude or longitude differ by at least
// degrees, provided neither point lies beyond maxAbsLat.
func MinDistanceForOffset(degrees, maxAbsLat float64) float64 {
	if degrees <= 0 {
		return 0
	}
	rad := degrees * math.Pi / 180.0
	if rad > math.Pi {
		rad = math.Pi
	}
	c := math.Cos(math.Min(math.Abs(maxAbsLat), 90) * math.Pi / 180.0)
	// hav(d) >= cos(lat1)cos(lat2)hav(dLon) >= c^2 hav(dLon)
	lon := 2 * math.Asin(math.Min(1, c*math.Sin(rad/2)))
	return orb.EarthRadius * math.Min(rad, lon)
}
