package store

import (
	"context"
	"time"

	"github.com/stadtatlas/civic-cli/internal/model"
)

// BBox is a lat/lng bounding box filter.
type BBox struct {
	MinLat float64 `json:"minLat"`
	MinLng float64 `json:"minLng"`
	MaxLat float64 `json:"maxLat"`
	MaxLng float64 `json:"maxLng"`
}

// PointFilter specifies criteria for listing points.
type PointFilter struct {
	CityID   string `json:"cityId,omitempty"`
	LayerID  string `json:"layerId,omitempty"`
	District string `json:"district,omitempty"`
	BBox     *BBox  `json:"bbox,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the civic atlas.
type Store interface {
	// Cities
	UpsertCity(ctx context.Context, city model.City) (*model.City, error)
	GetCityBySlug(ctx context.Context, slug string) (*model.City, error)
	ListCities(ctx context.Context) ([]model.City, error)

	// Layers
	UpsertLayer(ctx context.Context, layer model.Layer) (*model.Layer, error)
	GetLayerBySlug(ctx context.Context, cityID, slug string) (*model.Layer, error)
	ListLayers(ctx context.Context, cityID string) ([]model.Layer, error)
	TouchLayerSync(ctx context.Context, layerID string, at time.Time) error

	// Points
	ReplaceLayerPoints(ctx context.Context, layerID string, points []model.Point) (int, error)
	ListPoints(ctx context.Context, filter PointFilter) ([]model.Point, error)
	CountPoints(ctx context.Context, filter PointFilter) (int, error)
	SearchPoints(ctx context.Context, cityID, query string, limit int) ([]model.Point, error)
	ApplyLabels(ctx context.Context, labels map[string]string) (int, error)
	ClearLabels(ctx context.Context, cityID string) (int, error)

	// Districts
	ReplaceDistricts(ctx context.Context, cityID string, districts []model.District) error
	ListDistricts(ctx context.Context, cityID string) ([]model.District, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
