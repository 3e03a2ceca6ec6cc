package equity

import (
	"math"
	"sort"

	"github.com/stadtatlas/civic-cli/internal/model"
)

// DistrictStat holds the facility distribution for one district group. A
// group is either a known district record or a free-text label found on
// points. Population and AreaKm2 are nil for label-only groups; Density
// is nil whenever the area is unknown or zero.
type DistrictStat struct {
	Name        string         `json:"name"`
	Slug        string         `json:"slug,omitempty"`
	Total       int            `json:"total"`
	ByLayer     map[string]int `json:"byLayer"`
	Population  *int64         `json:"population"`
	AreaKm2     *float64       `json:"areaKm2"`
	Density     *float64       `json:"density"`
	EquityScore int            `json:"equityScore"`
}

// Summary describes the city-wide context for a DistrictStats result.
type Summary struct {
	CityTotal     int     `json:"cityTotal"`
	DistrictCount int     `json:"districtCount"`
	CityAverage   float64 `json:"cityAverage"`
}

// DistrictStats aggregates points into per-district statistics. Groups are
// seeded from the district records so boundary-only districts with zero
// points still appear, then extended with every distinct label present on
// points; unlabeled points collect under UnknownDistrict. The equity score
// is the group's share of the city average in percent (100 = average) and
// defined as 0 when the city average is 0. Results sort ascending by
// equity score, most underserved first.
func DistrictStats(points []model.Point, districts []model.District, layers []model.Layer) ([]DistrictStat, Summary) {
	slugByLayerID := make(map[string]string, len(layers))
	for _, l := range layers {
		slugByLayerID[l.ID] = l.Slug
	}

	groups := make(map[string]*DistrictStat)
	for _, d := range districts {
		groups[d.Name] = &DistrictStat{
			Name:       d.Name,
			Slug:       d.Slug,
			ByLayer:    map[string]int{},
			Population: d.Population,
			AreaKm2:    d.AreaKm2,
		}
	}

	for _, p := range points {
		name := p.District
		if name == "" {
			name = UnknownDistrict
		}
		g, ok := groups[name]
		if !ok {
			g = &DistrictStat{Name: name, ByLayer: map[string]int{}}
			groups[name] = g
		}
		g.Total++

		key := slugByLayerID[p.LayerID]
		if key == "" {
			key = p.LayerID
		}
		g.ByLayer[key]++
	}

	cityTotal := len(points)
	var cityAvg float64
	if len(groups) > 0 {
		cityAvg = float64(cityTotal) / float64(len(groups))
	}

	stats := make([]DistrictStat, 0, len(groups))
	for _, g := range groups {
		if cityAvg > 0 {
			g.EquityScore = int(math.Round(float64(g.Total) / cityAvg * 100))
		}
		if g.AreaKm2 != nil && *g.AreaKm2 > 0 {
			density := round1(float64(g.Total) / *g.AreaKm2)
			g.Density = &density
		}
		stats = append(stats, *g)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].EquityScore != stats[j].EquityScore {
			return stats[i].EquityScore < stats[j].EquityScore
		}
		return stats[i].Name < stats[j].Name
	})

	return stats, Summary{
		CityTotal:     cityTotal,
		DistrictCount: len(groups),
		CityAverage:   round1(cityAvg),
	}
}
