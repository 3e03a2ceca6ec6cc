// Package assign labels points of interest with the administrative
// district that contains them. Points outside every boundary fall back to
// the district with the nearest centroid. Assignment is a pure batch
// computation: it produces a label map and never mutates its inputs, so
// re-running on identical inputs reproduces identical labels.
package assign

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/stadtatlas/civic-cli/internal/geometry"
	"github.com/stadtatlas/civic-cli/internal/model"
)

// ErrNoDistrictGeometry reports that no candidate district carries a
// usable boundary ring. District boundaries must be loaded before points
// can be assigned.
var ErrNoDistrictGeometry = eris.New("assign: no districts with geometry")

// Result summarizes one assignment sweep. Fallback counts the subset of
// assignments that were resolved by nearest centroid rather than
// containment; fallback assignments still count as assigned.
type Result struct {
	Assigned int               `json:"assigned"`
	Fallback int               `json:"fallback"`
	Labels   map[string]string `json:"labels"` // point ID -> district display name
}

// AssignAll computes a district display name for every point. Districts
// without geometry are excluded up front; if none remain the sweep is
// refused with ErrNoDistrictGeometry so the caller can surface the missing
// boundary sync. Overlapping boundaries resolve to the first candidate in
// the given order — pass districts through SortBySmallestArea for a
// deterministic, documented ordering.
//
// The sweep is O(points × districts) and meant for offline re-sync jobs,
// not per-request use.
func AssignAll(points []model.Point, districts []model.District) (*Result, error) {
	var candidates []model.District
	for _, d := range districts {
		if d.HasGeometry() {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoDistrictGeometry
	}

	res := &Result{Labels: make(map[string]string, len(points))}
	for _, p := range points {
		name, exact := locate(p.Lng, p.Lat, candidates)
		res.Labels[p.ID] = name
		res.Assigned++
		if !exact {
			res.Fallback++
		}
	}
	return res, nil
}

// locate returns the display name of the first candidate whose ring
// contains the point. When none does, it picks the candidate whose vertex
// centroid is nearest by great-circle distance; ties keep the first seen.
func locate(lng, lat float64, candidates []model.District) (name string, exact bool) {
	for _, d := range candidates {
		if geometry.PointInPolygon(lng, lat, d.Ring) {
			return d.Name, true
		}
	}

	best := 0
	bestDist := math.Inf(1)
	for i, d := range candidates {
		clng, clat, ok := geometry.Centroid(d.Ring)
		if !ok {
			continue
		}
		if dist := geometry.HaversineMeters(lat, lng, clat, clng); dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return candidates[best].Name, false
}

// Apply writes the labels onto the point slice in place, overwriting any
// previous district label. Points absent from the map are left untouched.
// Returns the number of points whose label changed.
func Apply(points []model.Point, labels map[string]string) int {
	changed := 0
	for i := range points {
		name, ok := labels[points[i].ID]
		if !ok {
			continue
		}
		if points[i].District != name {
			points[i].District = name
			changed++
		}
	}
	return changed
}

// SortBySmallestArea returns a copy of districts ordered by ascending ring
// area, districts without geometry last. With overlapping boundaries this
// makes the most specific (smallest) district win containment, giving
// AssignAll a deterministic order independent of storage order.
func SortBySmallestArea(districts []model.District) []model.District {
	sorted := make([]model.District, len(districts))
	copy(sorted, districts)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.HasGeometry() && !b.HasGeometry():
			return true
		case !a.HasGeometry():
			return false
		}
		return geometry.RingAreaKm2(a.Ring) < geometry.RingAreaKm2(b.Ring)
	})
	return sorted
}
