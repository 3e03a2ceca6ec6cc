// Package model defines the civic records that flow through the engine:
// cities, facility layers, points of interest, and administrative
// districts. Field names serialize in the camelCase form the map frontend
// consumes directly.
package model

import (
	"time"

	"github.com/stadtatlas/civic-cli/internal/geometry"
)

// City is a municipality with its own layers, points, and districts.
// Every operation in the engine is scoped to exactly one city.
type City struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	State        string    `json:"state,omitempty"`
	CenterLat    float64   `json:"centerLat"`
	CenterLng    float64   `json:"centerLng"`
	DefaultZoom  int       `json:"defaultZoom"`
	PrimaryColor string    `json:"primaryColor,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Layer is a named category of facility (playgrounds, trees, schools).
// Analytics use it purely as a grouping key; icon and color are cosmetic.
type Layer struct {
	ID               string     `json:"id"`
	CityID           string     `json:"cityId"`
	Slug             string     `json:"slug"`
	Name             string     `json:"name"`
	Icon             string     `json:"icon,omitempty"`
	Color            string     `json:"color,omitempty"`
	VisibleByDefault bool       `json:"visibleByDefault"`
	LastSync         *time.Time `json:"lastSync,omitempty"`
}

// Point is a located civic facility. District is a denormalized display
// name written by the assigner; empty means not yet assigned.
type Point struct {
	ID         string            `json:"id"`
	CityID     string            `json:"cityId"`
	LayerID    string            `json:"layerId"`
	Name       string            `json:"name"`
	Lat        float64           `json:"lat"`
	Lng        float64           `json:"lng"`
	Address    string            `json:"address,omitempty"`
	District   string            `json:"district,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	SourceID   string            `json:"sourceId,omitempty"`
}

// District is an administrative area within a city. Ring may be empty: a
// district without geometry never matches point-in-polygon and is skipped
// by fallback assignment, but still shows up in equity output. Population
// and AreaKm2 are nil when unknown.
type District struct {
	ID         string        `json:"id"`
	CityID     string        `json:"cityId"`
	Slug       string        `json:"slug"`
	Name       string        `json:"name"`
	Ring       geometry.Ring `json:"ring,omitempty"`
	Population *int64        `json:"population"`
	AreaKm2    *float64      `json:"areaKm2"`
}

// HasGeometry reports whether the district carries a usable boundary ring.
func (d District) HasGeometry() bool { return len(d.Ring) >= 3 }
