package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stadtatlas/civic-cli/internal/assign"
	"github.com/stadtatlas/civic-cli/internal/ingest"
	"github.com/stadtatlas/civic-cli/internal/model"
	"github.com/stadtatlas/civic-cli/internal/store"
)

var (
	districtsCity   string
	districtsFormat string
	assignAllCities bool
)

var districtsCmd = &cobra.Command{
	Use:   "districts",
	Short: "Manage district boundaries and point assignment",
}

// -- districts load --

var districtsLoadCmd = &cobra.Command{
	Use:   "load <boundaries.geojson|boundaries.shp>",
	Short: "Replace a city's district boundaries from a GeoJSON or shapefile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		city, err := st.GetCityBySlug(ctx, districtsCity)
		if err != nil {
			return err
		}

		format := districtsFormat
		if format == "" {
			switch strings.ToLower(filepath.Ext(args[0])) {
			case ".shp":
				format = "shp"
			default:
				format = "geojson"
			}
		}

		var districts []model.District
		switch format {
		case "geojson":
			data, err := os.ReadFile(args[0])
			if err != nil {
				return eris.Wrapf(err, "read %s", args[0])
			}
			districts, err = ingest.ReadDistrictsGeoJSON(data, city.ID)
			if err != nil {
				return err
			}
		case "shp":
			districts, err = ingest.ReadDistrictsShapefile(args[0], city.ID)
			if err != nil {
				return err
			}
		default:
			return eris.Errorf("unknown format %q (want geojson or shp)", format)
		}

		if err := st.ReplaceDistricts(ctx, city.ID, districts); err != nil {
			return eris.Wrap(err, "districts load")
		}

		zap.L().Info("districts loaded",
			zap.String("city", city.Slug),
			zap.Int("districts", len(districts)),
		)
		return nil
	},
}

// -- districts assign --

var districtsAssignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Classify every point into its district",
	Long:  "Runs point-in-polygon classification with nearest-centroid fallback over one city (--city) or every loaded city (--all) and writes the labels back to the store.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if !assignAllCities && districtsCity == "" {
			return eris.New("either --city or --all is required")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		slugs := []string{districtsCity}
		if assignAllCities {
			cities, err := st.ListCities(ctx)
			if err != nil {
				return eris.Wrap(err, "districts assign")
			}
			slugs = slugs[:0]
			for _, c := range cities {
				slugs = append(slugs, c.Slug)
			}
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Assign.MaxConcurrentCities)
		for _, slug := range slugs {
			slug := slug
			g.Go(func() error {
				return assignCity(gctx, st, slug)
			})
		}
		return g.Wait()
	},
}

// assignCity classifies all points of one city and persists the labels.
func assignCity(ctx context.Context, st store.Store, citySlug string) error {
	city, err := st.GetCityBySlug(ctx, citySlug)
	if err != nil {
		return err
	}

	points, err := st.ListPoints(ctx, store.PointFilter{CityID: city.ID})
	if err != nil {
		return eris.Wrapf(err, "assign %s", citySlug)
	}
	districts, err := st.ListDistricts(ctx, city.ID)
	if err != nil {
		return eris.Wrapf(err, "assign %s", citySlug)
	}

	result, err := assign.AssignAll(points, assign.SortBySmallestArea(districts))
	if err != nil {
		return eris.Wrapf(err, "assign %s", citySlug)
	}

	updated, err := st.ApplyLabels(ctx, result.Labels)
	if err != nil {
		return eris.Wrapf(err, "assign %s", citySlug)
	}

	zap.L().Info("assignment complete",
		zap.String("city", citySlug),
		zap.Int("points", len(points)),
		zap.Int("exact", result.Assigned),
		zap.Int("fallback", result.Fallback),
		zap.Int("updated", updated),
	)
	return nil
}

func init() {
	districtsLoadCmd.Flags().StringVar(&districtsCity, "city", "", "city slug (required)")
	districtsLoadCmd.Flags().StringVar(&districtsFormat, "format", "", "boundary format: geojson or shp (default from extension)")
	_ = districtsLoadCmd.MarkFlagRequired("city")

	districtsAssignCmd.Flags().StringVar(&districtsCity, "city", "", "city slug")
	districtsAssignCmd.Flags().BoolVar(&assignAllCities, "all", false, "assign every loaded city")

	districtsCmd.AddCommand(districtsLoadCmd)
	districtsCmd.AddCommand(districtsAssignCmd)
	rootCmd.AddCommand(districtsCmd)
}
