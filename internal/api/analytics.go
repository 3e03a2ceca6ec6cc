package api

import (
	"net/http"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/stadtatlas/civic-cli/internal/equity"
	"github.com/stadtatlas/civic-cli/internal/model"
	"github.com/stadtatlas/civic-cli/internal/store"
)

// cityData loads the full point, district, and layer sets the analytics
// routes operate on. Analytics always run over the whole city, never a
// paginated slice.
func (s *Server) cityData(r *http.Request) ([]model.Point, []model.District, []model.Layer, error) {
	city := cityFrom(r)
	ctx := r.Context()

	points, err := s.store.ListPoints(ctx, store.PointFilter{CityID: city.ID})
	if err != nil {
		return nil, nil, nil, err
	}
	districts, err := s.store.ListDistricts(ctx, city.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	layers, err := s.store.ListLayers(ctx, city.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return points, districts, layers, nil
}

func (s *Server) analyticsDistricts(w http.ResponseWriter, r *http.Request) {
	points, districts, layers, err := s.cityData(r)
	if err != nil {
		s.fail(w, "analytics districts", err)
		return
	}

	stats, summary := equity.DistrictStats(points, districts, layers)
	if stats == nil {
		stats = []equity.DistrictStat{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"districts": stats,
		"summary":   summary,
	})
}

func (s *Server) analyticsCoverage(w http.ResponseWriter, r *http.Request) {
	targetSlug := r.URL.Query().Get("layer")
	if targetSlug == "" {
		respondError(w, http.StatusBadRequest, "layer query parameter is required")
		return
	}

	radius := s.defaultRadiusMeters
	if raw := r.URL.Query().Get("radius"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "radius must be a number")
			return
		}
		radius = v
	}

	points, _, layers, err := s.cityData(r)
	if err != nil {
		s.fail(w, "analytics coverage", err)
		return
	}

	report, err := equity.CoverageAnalysis(points, layers, targetSlug, radius)
	switch {
	case eris.Is(err, equity.ErrLayerNotFound):
		respondError(w, http.StatusNotFound, "layer not found")
		return
	case eris.Is(err, equity.ErrInvalidRadius):
		respondError(w, http.StatusBadRequest, "radius must be non-negative")
		return
	case err != nil:
		s.fail(w, "analytics coverage", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) analyticsLayers(w http.ResponseWriter, r *http.Request) {
	points, _, layers, err := s.cityData(r)
	if err != nil {
		s.fail(w, "analytics layers", err)
		return
	}

	stats := equity.LayerComparison(points, layers)
	if stats == nil {
		stats = []equity.LayerStat{}
	}
	respondJSON(w, http.StatusOK, stats)
}
