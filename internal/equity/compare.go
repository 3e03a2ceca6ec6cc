package equity

import "github.com/stadtatlas/civic-cli/internal/model"

// LayerStat describes how evenly one facility layer spreads across
// district labels. DistributionSpread is the gap between the best and
// worst served district; 0 for layers without points.
type LayerStat struct {
	Slug               string  `json:"slug"`
	Name               string  `json:"name"`
	Total              int     `json:"total"`
	DistrictsServed    int     `json:"districtsServed"`
	AvgPerDistrict     float64 `json:"avgPerDistrict"`
	MaxPerDistrict     int     `json:"maxPerDistrict"`
	MinPerDistrict     int     `json:"minPerDistrict"`
	DistributionSpread int     `json:"distributionSpread"`
}

// LayerComparison computes distribution statistics for each layer in the
// given order. Unlabeled points count toward the UnknownDistrict group.
func LayerComparison(points []model.Point, layers []model.Layer) []LayerStat {
	stats := make([]LayerStat, 0, len(layers))
	for _, l := range layers {
		perDistrict := make(map[string]int)
		total := 0
		for _, p := range points {
			if p.LayerID != l.ID {
				continue
			}
			name := p.District
			if name == "" {
				name = UnknownDistrict
			}
			perDistrict[name]++
			total++
		}

		s := LayerStat{Slug: l.Slug, Name: l.Name, Total: total, DistrictsServed: len(perDistrict)}
		if len(perDistrict) > 0 {
			first := true
			for _, count := range perDistrict {
				if first || count > s.MaxPerDistrict {
					s.MaxPerDistrict = count
				}
				if first || count < s.MinPerDistrict {
					s.MinPerDistrict = count
				}
				first = false
			}
			s.AvgPerDistrict = round1(float64(total) / float64(len(perDistrict)))
			s.DistributionSpread = s.MaxPerDistrict - s.MinPerDistrict
		}
		stats = append(stats, s)
	}
	return stats
}
