package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stadtatlas/civic-cli/internal/geometry"
	"github.com/stadtatlas/civic-cli/internal/model"
	"github.com/stadtatlas/civic-cli/internal/store"
)

func TestAssignCity_WritesLabels(t *testing.T) {
	ctx := context.Background()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "assign.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(ctx))

	city, err := st.UpsertCity(ctx, model.City{Slug: "mannheim", Name: "Mannheim"})
	require.NoError(t, err)
	layer, err := st.UpsertLayer(ctx, model.Layer{CityID: city.ID, Slug: "spielplaetze", Name: "Spielplätze"})
	require.NoError(t, err)

	_, err = st.ReplaceLayerPoints(ctx, layer.ID, []model.Point{
		{ID: "inside", CityID: city.ID, LayerID: layer.ID, Name: "Drinnen", Lat: 49.49, Lng: 8.47},
		{ID: "outside", CityID: city.ID, LayerID: layer.ID, Name: "Draussen", Lat: 49.60, Lng: 8.47},
	})
	require.NoError(t, err)

	require.NoError(t, st.ReplaceDistricts(ctx, city.ID, []model.District{
		{CityID: city.ID, Slug: "innenstadt", Name: "Innenstadt",
			Ring: geometry.Ring{{8.46, 49.48}, {8.48, 49.48}, {8.48, 49.50}, {8.46, 49.50}}},
		{CityID: city.ID, Slug: "neckarau", Name: "Neckarau",
			Ring: geometry.Ring{{8.43, 49.48}, {8.45, 49.48}, {8.45, 49.50}, {8.43, 49.50}}},
	}))

	require.NoError(t, assignCity(ctx, st, "mannheim"))

	points, err := st.ListPoints(ctx, store.PointFilter{CityID: city.ID})
	require.NoError(t, err)
	require.Len(t, points, 2)

	byID := map[string]model.Point{}
	for _, p := range points {
		byID[p.ID] = p
	}
	// Containment for the inner point; nearest centroid for the outer one.
	assert.Equal(t, "Innenstadt", byID["inside"].District)
	assert.Equal(t, "Innenstadt", byID["outside"].District)
}

func TestAssignCity_UnknownCity(t *testing.T) {
	ctx := context.Background()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "assign.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(ctx))

	assert.Error(t, assignCity(ctx, st, "atlantis"))
}
