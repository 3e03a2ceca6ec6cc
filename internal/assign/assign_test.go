package assign

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stadtatlas/civic-cli/internal/geometry"
	"github.com/stadtatlas/civic-cli/internal/model"
)

// Two adjacent unit squares: west spans lng 0..1, east spans lng 1..2.
func testDistricts() []model.District {
	return []model.District{
		{ID: "d-west", Name: "West", Slug: "west", Ring: geometry.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}}},
		{ID: "d-east", Name: "Ost", Slug: "ost", Ring: geometry.Ring{{1, 0}, {2, 0}, {2, 1}, {1, 1}}},
	}
}

func TestAssignAll_Containment(t *testing.T) {
	points := []model.Point{
		{ID: "p1", Lng: 0.5, Lat: 0.5},
		{ID: "p2", Lng: 1.5, Lat: 0.5},
	}

	res, err := AssignAll(points, testDistricts())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Assigned)
	assert.Equal(t, 0, res.Fallback)
	assert.Equal(t, "West", res.Labels["p1"])
	assert.Equal(t, "Ost", res.Labels["p2"])
}

func TestAssignAll_FallbackNearestCentroid(t *testing.T) {
	// Outside both squares, but clearly closer to the eastern centroid.
	points := []model.Point{{ID: "p1", Lng: 2.4, Lat: 0.5}}

	res, err := AssignAll(points, testDistricts())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Assigned)
	assert.Equal(t, 1, res.Fallback)
	assert.Equal(t, "Ost", res.Labels["p1"])
}

func TestAssignAll_FallbackTieKeepsFirstSeen(t *testing.T) {
	// Equidistant from both centroids; the first candidate wins.
	points := []model.Point{{ID: "p1", Lng: 1.0, Lat: 3.0}}

	res, err := AssignAll(points, testDistricts())
	require.NoError(t, err)
	assert.Equal(t, "West", res.Labels["p1"])
	assert.Equal(t, 1, res.Fallback)
}

func TestAssignAll_NoGeometry(t *testing.T) {
	districts := []model.District{
		{ID: "d1", Name: "Leer"},
		{ID: "d2", Name: "Degeneriert", Ring: geometry.Ring{{0, 0}, {1, 1}}},
	}
	points := []model.Point{{ID: "p1", Lng: 0.5, Lat: 0.5}}

	res, err := AssignAll(points, districts)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoDistrictGeometry))
}

func TestAssignAll_SkipsDistrictsWithoutGeometry(t *testing.T) {
	districts := append([]model.District{{ID: "d0", Name: "Ohne Grenze"}}, testDistricts()...)
	points := []model.Point{
		{ID: "inside", Lng: 0.5, Lat: 0.5},
		{ID: "outside", Lng: -5, Lat: 0.5},
	}

	res, err := AssignAll(points, districts)
	require.NoError(t, err)
	// The geometry-less district can match neither containment nor fallback.
	assert.Equal(t, "West", res.Labels["inside"])
	assert.Equal(t, "West", res.Labels["outside"])
}

func TestAssignAll_FirstMatchWinsOnOverlap(t *testing.T) {
	big := model.District{ID: "big", Name: "Gross", Ring: geometry.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}}}
	small := model.District{ID: "small", Name: "Klein", Ring: geometry.Ring{{4, 4}, {6, 4}, {6, 6}, {4, 6}}}
	points := []model.Point{{ID: "p1", Lng: 5, Lat: 5}}

	res, err := AssignAll(points, []model.District{big, small})
	require.NoError(t, err)
	assert.Equal(t, "Gross", res.Labels["p1"])

	res, err = AssignAll(points, []model.District{small, big})
	require.NoError(t, err)
	assert.Equal(t, "Klein", res.Labels["p1"])
}

func TestAssignAll_Idempotent(t *testing.T) {
	points := []model.Point{
		{ID: "p1", Lng: 0.5, Lat: 0.5},
		{ID: "p2", Lng: 1.5, Lat: 0.25},
		{ID: "p3", Lng: 5.0, Lat: 5.0},
	}
	districts := testDistricts()

	first, err := AssignAll(points, districts)
	require.NoError(t, err)
	second, err := AssignAll(points, districts)
	require.NoError(t, err)

	assert.Equal(t, first.Labels, second.Labels)
	assert.Equal(t, first.Fallback, second.Fallback)
}

func TestAssignAll_DoesNotMutatePoints(t *testing.T) {
	points := []model.Point{{ID: "p1", Lng: 0.5, Lat: 0.5, District: "Alt"}}
	_, err := AssignAll(points, testDistricts())
	require.NoError(t, err)
	assert.Equal(t, "Alt", points[0].District)
}

func TestApply(t *testing.T) {
	points := []model.Point{
		{ID: "p1", District: "Alt"},
		{ID: "p2", District: "West"},
		{ID: "p3"},
	}
	labels := map[string]string{"p1": "West", "p2": "West"}

	changed := Apply(points, labels)
	assert.Equal(t, 1, changed)
	assert.Equal(t, "West", points[0].District)
	assert.Equal(t, "West", points[1].District)
	assert.Empty(t, points[2].District) // not in the map, untouched
}

func TestSortBySmallestArea(t *testing.T) {
	big := model.District{ID: "big", Name: "Gross", Ring: geometry.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}}}
	small := model.District{ID: "small", Name: "Klein", Ring: geometry.Ring{{4, 4}, {6, 4}, {6, 6}, {4, 6}}}
	bare := model.District{ID: "bare", Name: "Ohne"}

	input := []model.District{bare, big, small}
	sorted := SortBySmallestArea(input)
	require.Len(t, sorted, 3)
	assert.Equal(t, "small", sorted[0].ID)
	assert.Equal(t, "big", sorted[1].ID)
	assert.Equal(t, "bare", sorted[2].ID)

	// Input order untouched.
	assert.Equal(t, "bare", input[0].ID)
}
