package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/stadtatlas/civic-cli/internal/geometry"
	"github.com/stadtatlas/civic-cli/internal/model"
)

// ReadDistrictsShapefile loads district boundaries from an ESRI shapefile
// whose coordinates are already WGS84 lng/lat. The NAME attribute is
// required; a numeric POP attribute is carried over as population. Only
// the first part of each polygon is kept, per the single-ring geometry
// model. Records without a name or with a degenerate ring are skipped.
func ReadDistrictsShapefile(path, cityID string) ([]model.District, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader, "NAME")
	if nameIdx < 0 {
		return nil, eris.New("ingest: shapefile has no NAME field")
	}
	popIdx := fieldIndex(reader, "POP")

	log := zap.L().With(zap.String("component", "ingest.shapefile"))

	var districts []model.District
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}

		name := strings.TrimSpace(reader.Attribute(nameIdx))
		if name == "" {
			continue
		}

		ring := firstPartRing(poly)
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
		if popIdx >= 0 {
			if pop, err := strconv.ParseInt(strings.TrimSpace(reader.Attribute(popIdx)), 10, 64); err == nil && pop > 0 {
				d.Population = &pop
			}
		}
		districts = append(districts, d)
	}

	log.Info("shapefile districts parsed", zap.Int("count", len(districts)))
	return districts, nil
}

// firstPartRing returns the vertices of the polygon's first part.
func firstPartRing(p *shp.Polygon) geometry.Ring {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}
	start := p.Parts[0]
	end := int32(len(p.Points))
	if p.NumParts > 1 {
		end = p.Parts[1]
	}

	ring := make(geometry.Ring, 0, end-start)
	for i := start; i < end; i++ {
		ring = append(ring, [2]float64{p.Points[i].X, p.Points[i].Y})
	}
	return ring
}

// fieldIndex returns the index of a named attribute field, or -1.
// Shapefile field names are fixed-width and NUL padded.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}
