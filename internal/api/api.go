// Package api exposes the atlas over a read-only JSON HTTP interface.
// All routes live under /api/v1 and are scoped to a city slug, mirroring
// the way the map frontend requests data.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/stadtatlas/civic-cli/internal/model"
	"github.com/stadtatlas/civic-cli/internal/store"
)

// Server wires the persistence layer to the HTTP routes.
type Server struct {
	store               store.Store
	defaultRadiusMeters float64
	log                 *zap.Logger
}

// NewServer creates an API server backed by the given store.
func NewServer(st store.Store, defaultRadiusMeters float64) *Server {
	return &Server{
		store:               st,
		defaultRadiusMeters: defaultRadiusMeters,
		log:                 zap.L().With(zap.String("component", "api")),
	}
}

// Router builds the chi route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/cities", s.listCities)
		r.Route("/cities/{slug}", func(r chi.Router) {
			r.Use(s.cityCtx)
			r.Get("/", s.getCity)
			r.Get("/layers", s.listLayers)
			r.Get("/pois", s.listPoints)
			r.Get("/pois/geojson", s.pointsGeoJSON)
			r.Get("/search", s.searchPoints)
			r.Get("/districts", s.listDistricts)
			r.Get("/districts/geojson", s.districtsGeoJSON)
			r.Get("/analytics/districts", s.analyticsDistricts)
			r.Get("/analytics/coverage", s.analyticsCoverage)
			r.Get("/analytics/layers", s.analyticsLayers)
		})
	})

	return r
}

type ctxKey int

const cityKey ctxKey = 0

// cityCtx resolves the {slug} route param to a city and stores it in the
// request context; unknown slugs end the request with a 404.
func (s *Server) cityCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		city, err := s.store.GetCityBySlug(r.Context(), slug)
		if err != nil {
			respondError(w, http.StatusNotFound, "city not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), cityKey, city)))
	})
}

func cityFrom(r *http.Request) *model.City {
	return r.Context().Value(cityKey).(*model.City)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
