package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// unit square from (0,0) to (1,1), not explicitly closed.
var square = Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

func TestPointInPolygon(t *testing.T) {
	tests := []struct {
		name     string
		lng, lat float64
		ring     Ring
		expected bool
	}{
		{name: "center of square", lng: 0.5, lat: 0.5, ring: square, expected: true},
		{name: "near corner, inside", lng: 0.01, lat: 0.01, ring: square, expected: true},
		{name: "near edge, inside", lng: 0.99, lat: 0.5, ring: square, expected: true},
		{name: "outside right", lng: 1.5, lat: 0.5, ring: square, expected: false},
		{name: "outside above", lng: 0.5, lat: 1.5, ring: square, expected: false},
		{name: "outside below", lng: 0.5, lat: -0.5, ring: square, expected: false},
		{name: "far away", lng: 100, lat: 50, ring: square, expected: false},
		{name: "degenerate two-vertex ring", lng: 0.5, lat: 0.5, ring: Ring{{0, 0}, {1, 1}}, expected: false},
		{name: "empty ring", lng: 0, lat: 0, ring: Ring{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PointInPolygon(tt.lng, tt.lat, tt.ring))
		})
	}
}

func TestPointInPolygon_ClosedRingSameResult(t *testing.T) {
	closed := Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	assert.True(t, PointInPolygon(0.5, 0.5, closed))
	assert.False(t, PointInPolygon(1.5, 0.5, closed))
}

func TestPointInPolygon_Triangle(t *testing.T) {
	tri := Ring{{0, 0}, {4, 0}, {2, 3}}
	assert.True(t, PointInPolygon(2, 1, tri))
	assert.False(t, PointInPolygon(0.1, 2.9, tri))
}

func TestCentroid(t *testing.T) {
	lng, lat, ok := Centroid(square)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, lng, 1e-9)
	assert.InDelta(t, 0.5, lat, 1e-9)

	_, _, ok = Centroid(Ring{})
	assert.False(t, ok)

	lng, lat, ok = Centroid(Ring{{8.5, 49.5}})
	assert.True(t, ok)
	assert.InDelta(t, 8.5, lng, 1e-9)
	assert.InDelta(t, 49.5, lat, 1e-9)
}

func TestRingAreaKm2_SmallSquare(t *testing.T) {
	// Square ring spanning one kilometer of latitude in each coordinate
	// axis at Mannheim's latitude. The spherical shoelace should land
	// within 10% of 1 km².
	const d = 1.0 / 111.195 // ~1km in latitude degrees
	ring := Ring{
		{8.4660, 49.4875},
		{8.4660 + d, 49.4875},
		{8.4660 + d, 49.4875 + d},
		{8.4660, 49.4875 + d},
	}
	area := RingAreaKm2(ring)
	assert.InDelta(t, 1.0, area, 0.1)
}

func TestRingAreaKm2_Degenerate(t *testing.T) {
	assert.Zero(t, RingAreaKm2(Ring{}))
	assert.Zero(t, RingAreaKm2(Ring{{0, 0}, {1, 1}}))
}

func TestRingAreaKm2_OrientationIndependent(t *testing.T) {
	const d = 0.01
	cw := Ring{{0, 0}, {0, d}, {d, d}, {d, 0}}
	ccw := Ring{{0, 0}, {d, 0}, {d, d}, {0, d}}
	assert.InDelta(t, RingAreaKm2(cw), RingAreaKm2(ccw), 1e-12)
}

func TestHaversineMeters(t *testing.T) {
	t.Run("identical points", func(t *testing.T) {
		assert.Zero(t, HaversineMeters(49.4875, 8.4660, 49.4875, 8.4660))
	})

	t.Run("antipodal on equator", func(t *testing.T) {
		// Half of Earth's circumference, ~20,015 km.
		d := HaversineMeters(0, 0, 0, 180)
		assert.InDelta(t, 20015086, d, 5000)
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		// ~111.2 km regardless of longitude.
		d := HaversineMeters(49, 8.5, 50, 8.5)
		assert.InDelta(t, 111195, d, 200)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := HaversineMeters(49.4875, 8.4660, 52.52, 13.405)
		b := HaversineMeters(52.52, 13.405, 49.4875, 8.4660)
		assert.InDelta(t, a, b, 1e-6)
	})
}
