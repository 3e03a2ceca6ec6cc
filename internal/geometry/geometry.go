// Package geometry provides the pure spatial primitives behind district
// assignment and equity analytics: ray-casting containment, vertex
// centroids, spherical ring areas, and great-circle distances. All
// functions are side-effect free and operate on WGS84 degree coordinates.
package geometry

import "math"

// Earth radius constants for spherical approximations.
const (
	earthRadiusKm = 6371.0
	earthRadiusM  = 6371000.0
)

// Ring is a single outer polygon ring as ordered [longitude, latitude]
// pairs in degrees. The first vertex need not be repeated at the end;
// the closing edge is implied.
type Ring [][2]float64

// PointInPolygon reports whether the point at (lng, lat) lies inside ring,
// using a ray cast toward +longitude and counting edge crossings. Rings
// with fewer than 3 vertices contain nothing. Points exactly on an edge or
// vertex classify either way depending on edge order; callers must not
// rely on boundary behavior.
func PointInPolygon(lng, lat float64, ring Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > lat) != (yj > lat) && lng < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Centroid returns the arithmetic mean of the ring's vertices. This is not
// the area-weighted centroid; it is only good enough to rank districts by
// rough proximity, which is all the fallback assignment needs. ok is false
// for an empty ring.
func Centroid(ring Ring) (lng, lat float64, ok bool) {
	if len(ring) == 0 {
		return 0, 0, false
	}
	for _, v := range ring {
		lng += v[0]
		lat += v[1]
	}
	n := float64(len(ring))
	return lng / n, lat / n, true
}

// RingAreaKm2 estimates the ring's area in square kilometers: the planar
// shoelace sum over radian coordinates, scaled by the squared Earth
// radius. Accurate enough for city-scale rings; degrades over large
// latitude spans and across the antimeridian. Returns 0 for fewer than 3
// vertices.
func RingAreaKm2(ring Ring) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		lng1, lat1 := radians(ring[i][0]), radians(ring[i][1])
		lng2, lat2 := radians(ring[j][0]), radians(ring[j][1])
		sum += lng1*lat2 - lng2*lat1
	}
	return math.Abs(sum) / 2 * earthRadiusKm * earthRadiusKm
}

// HaversineMeters returns the great-circle distance in meters between two
// WGS84 coordinates.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lng2 - lng1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
