package ingest

import (
	"encoding/json"
	"math"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/stadtatlas/civic-cli/internal/geometry"
	"github.com/stadtatlas/civic-cli/internal/model"
)

// ReadDistrictsGeoJSON parses district boundaries from a GeoJSON
// FeatureCollection. Only the outer ring is kept: holes and all but the
// first polygon of a MultiPolygon are dropped, matching the engine's
// single-ring geometry model. Features without a name or with a
// degenerate ring are skipped and logged. The district area is estimated
// from the ring; a numeric "population" property is carried over.
func ReadDistrictsGeoJSON(data []byte, cityID string) ([]model.District, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "ingest: parse geojson")
	}

	log := zap.L().With(zap.String("component", "ingest.geojson"))

	var districts []model.District
	for _, f := range fc.Features {
		name := stringProperty(f.Properties, "name")
		if name == "" {
			log.Warn("ingest: skipping feature without name property")
			continue
		}

		ring := outerRing(f.Geometry)
		if len(ring) < 3 {
			log.Warn("ingest: skipping district with degenerate ring", zap.String("name", name))
			continue
		}

		area := math.Round(geometry.RingAreaKm2(ring)*100) / 100
		d := model.District{
			ID:      uuid.New().String(),
			CityID:  cityID,
			Slug:    Slugify(name),
			Name:    name,
			Ring:    ring,
			AreaKm2: &area,
		}
		if pop, ok := int64Property(f.Properties, "population"); ok {
			d.Population = &pop
		}
		districts = append(districts, d)
	}
	return districts, nil
}

// outerRing extracts the outer ring of a polygonal geometry. MultiPolygons
// contribute only their first polygon.
func outerRing(g geom.T) geometry.Ring {
	var poly *geom.Polygon
	switch t := g.(type) {
	case *geom.Polygon:
		poly = t
	case *geom.MultiPolygon:
		if t.NumPolygons() == 0 {
			return nil
		}
		poly = t.Polygon(0)
	default:
		return nil
	}

	if poly.NumLinearRings() == 0 {
		return nil
	}
	coords := poly.LinearRing(0).Coords()
	ring := make(geometry.Ring, 0, len(coords))
	for _, c := range coords {
		ring = append(ring, [2]float64{c.X(), c.Y()})
	}
	return ring
}

func stringProperty(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func int64Property(props map[string]any, key string) (int64, bool) {
	switch v := props[key].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
	}
	return 0, false
}
