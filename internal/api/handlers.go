package api

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/stadtatlas/civic-cli/internal/model"
	"github.com/stadtatlas/civic-cli/internal/store"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
	searchLimit     = 20
)

func (s *Server) listCities(w http.ResponseWriter, r *http.Request) {
	cities, err := s.store.ListCities(r.Context())
	if err != nil {
		s.fail(w, "list cities", err)
		return
	}
	if cities == nil {
		cities = []model.City{}
	}
	respondJSON(w, http.StatusOK, cities)
}

func (s *Server) getCity(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, cityFrom(r))
}

func (s *Server) listLayers(w http.ResponseWriter, r *http.Request) {
	layers, err := s.store.ListLayers(r.Context(), cityFrom(r).ID)
	if err != nil {
		s.fail(w, "list layers", err)
		return
	}
	if layers == nil {
		layers = []model.Layer{}
	}
	respondJSON(w, http.StatusOK, layers)
}

func (s *Server) listPoints(w http.ResponseWriter, r *http.Request) {
	filter, ok := s.pointFilter(w, r)
	if !ok {
		return
	}

	filter.Limit = queryInt(r, "limit", defaultPageSize)
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	filter.Offset = queryInt(r, "offset", 0)

	points, err := s.store.ListPoints(r.Context(), filter)
	if err != nil {
		s.fail(w, "list points", err)
		return
	}
	if points == nil {
		points = []model.Point{}
	}

	total, err := s.store.CountPoints(r.Context(), store.PointFilter{
		CityID: filter.CityID, LayerID: filter.LayerID, District: filter.District, BBox: filter.BBox,
	})
	if err != nil {
		s.fail(w, "count points", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"pois":   points,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func (s *Server) pointsGeoJSON(w http.ResponseWriter, r *http.Request) {
	filter, ok := s.pointFilter(w, r)
	if !ok {
		return
	}

	points, err := s.store.ListPoints(r.Context(), filter)
	if err != nil {
		s.fail(w, "list points", err)
		return
	}

	features := make([]model.Feature, 0, len(points))
	for _, p := range points {
		features = append(features, p.Feature())
	}
	respondJSON(w, http.StatusOK, model.NewFeatureCollection(features))
}

func (s *Server) searchPoints(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len([]rune(q)) < 2 {
		respondError(w, http.StatusBadRequest, "query must be at least 2 characters")
		return
	}

	points, err := s.store.SearchPoints(r.Context(), cityFrom(r).ID, q, searchLimit)
	if err != nil {
		s.fail(w, "search points", err)
		return
	}
	if points == nil {
		points = []model.Point{}
	}
	respondJSON(w, http.StatusOK, points)
}

func (s *Server) listDistricts(w http.ResponseWriter, r *http.Request) {
	districts, err := s.store.ListDistricts(r.Context(), cityFrom(r).ID)
	if err != nil {
		s.fail(w, "list districts", err)
		return
	}
	if districts == nil {
		districts = []model.District{}
	}
	respondJSON(w, http.StatusOK, districts)
}

func (s *Server) districtsGeoJSON(w http.ResponseWriter, r *http.Request) {
	districts, err := s.store.ListDistricts(r.Context(), cityFrom(r).ID)
	if err != nil {
		s.fail(w, "list districts", err)
		return
	}

	features := make([]model.Feature, 0, len(districts))
	for _, d := range districts {
		features = append(features, d.Feature())
	}
	respondJSON(w, http.StatusOK, model.NewFeatureCollection(features))
}

// pointFilter builds the store filter shared by the poi listing routes
// from the layer, district, and bbox query params. A false return means
// the response has already been written.
func (s *Server) pointFilter(w http.ResponseWriter, r *http.Request) (store.PointFilter, bool) {
	city := cityFrom(r)
	filter := store.PointFilter{CityID: city.ID}

	if layerSlug := r.URL.Query().Get("layer"); layerSlug != "" {
		layer, err := s.store.GetLayerBySlug(r.Context(), city.ID, layerSlug)
		if err != nil {
			respondError(w, http.StatusNotFound, "layer not found")
			return filter, false
		}
		filter.LayerID = layer.ID
	}
	filter.District = r.URL.Query().Get("district")

	if raw := r.URL.Query().Get("bbox"); raw != "" {
		bbox, err := parseBBox(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "bbox must be minLng,minLat,maxLng,maxLat")
			return filter, false
		}
		filter.BBox = bbox
	}
	return filter, true
}

// parseBBox parses the "minLng,minLat,maxLng,maxLat" form used by map
// viewport queries.
func parseBBox(raw string) (*store.BBox, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, strconv.ErrSyntax
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return &store.BBox{MinLng: vals[0], MinLat: vals[1], MaxLng: vals[2], MaxLat: vals[3]}, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.log.Error(op, zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal error")
}
