package equity

import (
	"sort"

	"github.com/stadtatlas/civic-cli/internal/geometry"
	"github.com/stadtatlas/civic-cli/internal/model"
)

// DistrictCoverage holds per-district coverage against the target layer.
type DistrictCoverage struct {
	Name        string `json:"name"`
	TotalPois   int    `json:"totalPois"`
	CoveredPois int    `json:"coveredPois"`
	CoveragePct int    `json:"coveragePct"`
}

// CoverageReport is the result of a coverage analysis. TargetPoints is the
// raw target-layer point list for map rendering by the caller.
type CoverageReport struct {
	TargetLayer   string             `json:"targetLayer"`
	RadiusMeters  float64            `json:"radiusMeters"`
	FacilityCount int                `json:"facilityCount"`
	Districts     []DistrictCoverage `json:"districts"`
	TargetPoints  []model.Point      `json:"targetPoints"`
}

// CoverageAnalysis classifies every point in the city as covered when any
// target-layer point lies within radiusMeters by great-circle distance
// (existence check, first match wins), then aggregates coverage per
// district label. Districts sort ascending by coverage percentage so the
// worst-covered come first. An unknown target slug yields ErrLayerNotFound;
// a negative radius yields ErrInvalidRadius.
//
// The scan is O(points × target points) and intended for offline analysis
// runs, not request handling.
func CoverageAnalysis(points []model.Point, layers []model.Layer, targetSlug string, radiusMeters float64) (*CoverageReport, error) {
	if radiusMeters < 0 {
		return nil, ErrInvalidRadius
	}

	var target *model.Layer
	for i := range layers {
		if layers[i].Slug == targetSlug {
			target = &layers[i]
			break
		}
	}
	if target == nil {
		return nil, ErrLayerNotFound
	}

	targetPoints := make([]model.Point, 0)
	for _, p := range points {
		if p.LayerID == target.ID {
			targetPoints = append(targetPoints, p)
		}
	}

	byDistrict := make(map[string]*DistrictCoverage)
	for _, p := range points {
		name := p.District
		if name == "" {
			name = UnknownDistrict
		}
		dc, ok := byDistrict[name]
		if !ok {
			dc = &DistrictCoverage{Name: name}
			byDistrict[name] = dc
		}
		dc.TotalPois++
		if withinRadius(p, targetPoints, radiusMeters) {
			dc.CoveredPois++
		}
	}

	districts := make([]DistrictCoverage, 0, len(byDistrict))
	for _, dc := range byDistrict {
		dc.CoveragePct = roundPct(dc.CoveredPois, dc.TotalPois)
		districts = append(districts, *dc)
	}
	sort.Slice(districts, func(i, j int) bool {
		if districts[i].CoveragePct != districts[j].CoveragePct {
			return districts[i].CoveragePct < districts[j].CoveragePct
		}
		return districts[i].Name < districts[j].Name
	})

	return &CoverageReport{
		TargetLayer:   targetSlug,
		RadiusMeters:  radiusMeters,
		FacilityCount: len(targetPoints),
		Districts:     districts,
		TargetPoints:  targetPoints,
	}, nil
}

// withinRadius reports whether any target point lies within the radius of
// p. The search short-circuits on the first hit.
func withinRadius(p model.Point, targets []model.Point, radiusMeters float64) bool {
	for _, t := range targets {
		if geometry.HaversineMeters(p.Lat, p.Lng, t.Lat, t.Lng) <= radiusMeters {
			return true
		}
	}
	return false
}
