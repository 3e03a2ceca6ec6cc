package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stadtatlas/civic-cli/internal/geometry"
)

func TestDistrictHasGeometry(t *testing.T) {
	tests := []struct {
		name     string
		ring     geometry.Ring
		expected bool
	}{
		{name: "nil ring", ring: nil, expected: false},
		{name: "two vertices", ring: geometry.Ring{{0, 0}, {1, 1}}, expected: false},
		{name: "triangle", ring: geometry.Ring{{0, 0}, {1, 0}, {0, 1}}, expected: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := District{Ring: tt.ring}
			assert.Equal(t, tt.expected, d.HasGeometry())
		})
	}
}

func TestDistrictJSON_NullDemographics(t *testing.T) {
	d := District{ID: "d1", CityID: "c1", Slug: "neckarstadt", Name: "Neckarstadt"}
	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["population"])
	assert.Nil(t, decoded["areaKm2"])
}

func TestPointFeature(t *testing.T) {
	p := Point{
		ID:         "p1",
		LayerID:    "l1",
		Name:       "Spielplatz am Park",
		Lat:        49.5,
		Lng:        8.47,
		District:   "Neckarstadt",
		Attributes: map[string]string{"surface": "sand"},
	}
	f := p.Feature()
	assert.Equal(t, "Feature", f.Type)
	assert.Equal(t, "Point", f.Geometry["type"])
	assert.Equal(t, []float64{8.47, 49.5}, f.Geometry["coordinates"])
	assert.Equal(t, "Neckarstadt", f.Properties["district"])
	assert.Equal(t, "sand", f.Properties["surface"])
}

func TestDistrictFeature(t *testing.T) {
	with := District{ID: "d1", Name: "Mitte", Slug: "mitte", Ring: geometry.Ring{{0, 0}, {1, 0}, {0, 1}}}
	f := with.Feature()
	assert.Equal(t, "Polygon", f.Geometry["type"])

	without := District{ID: "d2", Name: "Ohne", Slug: "ohne"}
	assert.Nil(t, without.Feature().Geometry)
}

func TestNewFeatureCollection_EmptyNotNull(t *testing.T) {
	raw, err := json.Marshal(NewFeatureCollection(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(raw))
}
