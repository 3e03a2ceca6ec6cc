package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPointsCSV(t *testing.T) {
	data := strings.Join([]string{
		"name,lat,lng,address,district,surface",
		"Spielplatz am Park,49.5001,8.4702,Parkstr. 1,Neckarstadt,sand",
		"Spielplatz West,49.4903,8.4401,,,",
		"Kaputte Zeile,not-a-number,8.44,,,",
		"Nullinsel,0,0,,,",
	}, "\n")

	points, skipped, err := ReadPointsCSV(strings.NewReader(data), "city-1", "layer-1", DefaultColumnMapping())
	require.NoError(t, err)

	assert.Equal(t, 2, skipped)
	require.Len(t, points, 2)

	p := points[0]
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "city-1", p.CityID)
	assert.Equal(t, "layer-1", p.LayerID)
	assert.Equal(t, "Spielplatz am Park", p.Name)
	assert.Equal(t, 49.5001, p.Lat)
	assert.Equal(t, 8.4702, p.Lng)
	assert.Equal(t, "Parkstr. 1", p.Address)
	assert.Equal(t, "Neckarstadt", p.District)
	assert.Equal(t, map[string]string{"surface": "sand"}, p.Attributes)

	assert.Nil(t, points[1].Attributes)
}

func TestReadPointsCSV_CustomMapping(t *testing.T) {
	data := "Bezeichnung,Breite,Laenge\nBaum 1,49.51,8.46\n"
	mapping := ColumnMapping{Name: "Bezeichnung", Lat: "Breite", Lng: "Laenge"}

	points, skipped, err := ReadPointsCSV(strings.NewReader(data), "c", "l", mapping)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, points, 1)
	assert.Equal(t, "Baum 1", points[0].Name)
}

func TestReadPointsCSV_BOMHeader(t *testing.T) {
	data := "\ufeffname,lat,lng\nBrunnen,49.49,8.47\n"
	points, _, err := ReadPointsCSV(strings.NewReader(data), "c", "l", DefaultColumnMapping())
	require.NoError(t, err)
	require.Len(t, points, 1)
}

func TestReadPointsCSV_MissingCoordinateColumn(t *testing.T) {
	data := "name,lat\nBrunnen,49.49\n"
	_, _, err := ReadPointsCSV(strings.NewReader(data), "c", "l", DefaultColumnMapping())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "longitude")
}

func TestReadPointsCSV_UnnamedPointGetsPlaceholder(t *testing.T) {
	data := "name,lat,lng\n,49.49,8.47\n"
	points, _, err := ReadPointsCSV(strings.NewReader(data), "c", "l", DefaultColumnMapping())
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "Unbenannt", points[0].Name)
}
