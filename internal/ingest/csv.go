package ingest

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/stadtatlas/civic-cli/internal/model"
)

// ColumnMapping names the CSV columns to read point fields from. Columns
// not present in the header are treated as absent.
type ColumnMapping struct {
	Name     string
	Lat      string
	Lng      string
	Address  string
	District string
}

// DefaultColumnMapping matches the common export format.
func DefaultColumnMapping() ColumnMapping {
	return ColumnMapping{Name: "name", Lat: "lat", Lng: "lng", Address: "address", District: "district"}
}

// ReadPointsCSV parses facility points from a CSV stream for one city and
// layer. Rows with missing or unparsable coordinates are skipped and
// counted, not fatal. Columns outside the mapping land in the point's
// attribute map.
func ReadPointsCSV(r io.Reader, cityID, layerID string, mapping ColumnMapping) ([]model.Point, int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, eris.Wrap(err, "ingest: read csv header")
	}
	// Strip a UTF-8 BOM from exports saved by spreadsheet tools.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	if _, ok := col[mapping.Lat]; !ok {
		return nil, 0, eris.Errorf("ingest: csv is missing latitude column %q", mapping.Lat)
	}
	if _, ok := col[mapping.Lng]; !ok {
		return nil, 0, eris.Errorf("ingest: csv is missing longitude column %q", mapping.Lng)
	}

	mapped := map[string]bool{
		mapping.Name: true, mapping.Lat: true, mapping.Lng: true,
		mapping.Address: true, mapping.District: true,
	}

	var points []model.Point
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, eris.Wrap(err, "ingest: read csv record")
		}

		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		lat, latErr := strconv.ParseFloat(get(mapping.Lat), 64)
		lng, lngErr := strconv.ParseFloat(get(mapping.Lng), 64)
		if latErr != nil || lngErr != nil || lat == 0 || lng == 0 {
			skipped++
			continue
		}

		name := get(mapping.Name)
		if name == "" {
			name = "Unbenannt"
		}

		attributes := make(map[string]string)
		for colName, i := range col {
			if mapped[colName] || i >= len(record) {
				continue
			}
			if v := strings.TrimSpace(record[i]); v != "" {
				attributes[colName] = v
			}
		}
		if len(attributes) == 0 {
			attributes = nil
		}

		points = append(points, model.Point{
			ID:         uuid.New().String(),
			CityID:     cityID,
			LayerID:    layerID,
			Name:       name,
			Lat:        lat,
			Lng:        lng,
			Address:    get(mapping.Address),
			District:   get(mapping.District),
			Attributes: attributes,
		})
	}

	if skipped > 0 {
		zap.L().Warn("ingest: skipped csv rows with invalid coordinates",
			zap.Int("skipped", skipped),
			zap.Int("imported", len(points)),
		)
	}
	return points, skipped, nil
}
