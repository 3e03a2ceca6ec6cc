// Package equity aggregates labeled points, district records, and layer
// records into per-district distribution statistics: equity scores,
// facility density, coverage against a target layer, and cross-layer
// comparison. All views are read-only batch computations over in-memory
// slices scoped to one city.
package equity

import (
	"math"

	"github.com/rotisserie/eris"
)

// UnknownDistrict groups points that carry no district label.
const UnknownDistrict = "Unbekannt"

// ErrLayerNotFound reports a coverage request for a layer slug that does
// not exist in the city.
var ErrLayerNotFound = eris.New("equity: target layer not found")

// ErrInvalidRadius reports a negative coverage radius.
var ErrInvalidRadius = eris.New("equity: radius must be non-negative")

// round1 rounds to one decimal place.
func round1(v float64) float64 { return math.Round(v*10) / 10 }

// roundPct rounds a ratio to a whole percentage.
func roundPct(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
