package model

// Feature is a GeoJSON feature ready for serialization.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   map[string]any `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection wraps features in a collection, normalizing nil to
// an empty slice so it serializes as [] rather than null.
func NewFeatureCollection(features []Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

// Feature renders the point as a GeoJSON Point feature with its
// attributes merged into the properties.
func (p Point) Feature() Feature {
	props := map[string]any{
		"id":       p.ID,
		"name":     p.Name,
		"layerId":  p.LayerID,
		"address":  p.Address,
		"district": p.District,
	}
	for k, v := range p.Attributes {
		props[k] = v
	}
	return Feature{
		Type:       "Feature",
		Geometry:   map[string]any{"type": "Point", "coordinates": []float64{p.Lng, p.Lat}},
		Properties: props,
	}
}

// Feature renders the district boundary as a GeoJSON Polygon feature.
// Districts without geometry render a nil geometry.
func (d District) Feature() Feature {
	var geometry map[string]any
	if d.HasGeometry() {
		geometry = map[string]any{"type": "Polygon", "coordinates": []any{d.Ring}}
	}
	return Feature{
		Type:     "Feature",
		Geometry: geometry,
		Properties: map[string]any{
			"id":   d.ID,
			"name": d.Name,
			"slug": d.Slug,
		},
	}
}
