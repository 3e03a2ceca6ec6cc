package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/stadtatlas/civic-cli/internal/equity"
	"github.com/stadtatlas/civic-cli/internal/model"
	"github.com/stadtatlas/civic-cli/internal/store"
)

var (
	analyticsCity  string
	coverageLayer  string
	coverageRadius float64
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Equity analytics over the loaded data",
}

// loadCityData pulls the full working set of one city for analytics runs.
func loadCityData(ctx context.Context, st store.Store, citySlug string) ([]model.Point, []model.District, []model.Layer, error) {
	city, err := st.GetCityBySlug(ctx, citySlug)
	if err != nil {
		return nil, nil, nil, err
	}

	points, err := st.ListPoints(ctx, store.PointFilter{CityID: city.ID})
	if err != nil {
		return nil, nil, nil, eris.Wrapf(err, "analytics %s", citySlug)
	}
	districts, err := st.ListDistricts(ctx, city.ID)
	if err != nil {
		return nil, nil, nil, eris.Wrapf(err, "analytics %s", citySlug)
	}
	layers, err := st.ListLayers(ctx, city.ID)
	if err != nil {
		return nil, nil, nil, eris.Wrapf(err, "analytics %s", citySlug)
	}
	return points, districts, layers, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// -- analytics stats --

var analyticsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Per-district facility counts, density, and equity scores",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		points, districts, layers, err := loadCityData(ctx, st, analyticsCity)
		if err != nil {
			return err
		}

		stats, summary := equity.DistrictStats(points, districts, layers)
		return printJSON(map[string]any{
			"districts": stats,
			"summary":   summary,
		})
	},
}

// -- analytics coverage --

var analyticsCoverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Share of points within walking distance of a target layer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		points, _, layers, err := loadCityData(ctx, st, analyticsCity)
		if err != nil {
			return err
		}

		radius := coverageRadius
		if radius == 0 {
			radius = cfg.Coverage.DefaultRadiusMeters
		}

		report, err := equity.CoverageAnalysis(points, layers, coverageLayer, radius)
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

// -- analytics compare --

var analyticsCompareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Distribution statistics per layer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		points, _, layers, err := loadCityData(ctx, st, analyticsCity)
		if err != nil {
			return err
		}

		return printJSON(equity.LayerComparison(points, layers))
	},
}

func init() {
	analyticsCmd.PersistentFlags().StringVar(&analyticsCity, "city", "", "city slug (required)")
	_ = analyticsCmd.MarkPersistentFlagRequired("city")

	analyticsCoverageCmd.Flags().StringVar(&coverageLayer, "layer", "", "target layer slug (required)")
	analyticsCoverageCmd.Flags().Float64Var(&coverageRadius, "radius", 0, "coverage radius in meters (default from config)")
	_ = analyticsCoverageCmd.MarkFlagRequired("layer")

	analyticsCmd.AddCommand(analyticsStatsCmd)
	analyticsCmd.AddCommand(analyticsCoverageCmd)
	analyticsCmd.AddCommand(analyticsCompareCmd)
	rootCmd.AddCommand(analyticsCmd)
}
