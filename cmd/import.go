package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stadtatlas/civic-cli/internal/ingest"
)

var (
	importCity    string
	importLayer   string
	importNameCol string
	importLatCol  string
	importLngCol  string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import facility points",
}

var importCSVCmd = &cobra.Command{
	Use:   "csv <file.csv>",
	Short: "Replace a layer's points from a CSV export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		city, err := st.GetCityBySlug(ctx, importCity)
		if err != nil {
			return err
		}
		layer, err := st.GetLayerBySlug(ctx, city.ID, importLayer)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrapf(err, "open %s", args[0])
		}
		defer f.Close() //nolint:errcheck

		mapping := ingest.DefaultColumnMapping()
		if cfg.Import.NameColumn != "" {
			mapping.Name = cfg.Import.NameColumn
		}
		if cfg.Import.LatColumn != "" {
			mapping.Lat = cfg.Import.LatColumn
		}
		if cfg.Import.LngColumn != "" {
			mapping.Lng = cfg.Import.LngColumn
		}
		if importNameCol != "" {
			mapping.Name = importNameCol
		}
		if importLatCol != "" {
			mapping.Lat = importLatCol
		}
		if importLngCol != "" {
			mapping.Lng = importLngCol
		}

		points, skipped, err := ingest.ReadPointsCSV(f, city.ID, layer.ID, mapping)
		if err != nil {
			return eris.Wrap(err, "import csv")
		}

		inserted, err := st.ReplaceLayerPoints(ctx, layer.ID, points)
		if err != nil {
			return eris.Wrap(err, "import csv")
		}
		if err := st.TouchLayerSync(ctx, layer.ID, time.Now().UTC()); err != nil {
			return eris.Wrap(err, "import csv")
		}

		zap.L().Info("import complete",
			zap.String("city", city.Slug),
			zap.String("layer", layer.Slug),
			zap.Int("imported", inserted),
			zap.Int("skipped", skipped),
		)
		return nil
	},
}

func init() {
	importCSVCmd.Flags().StringVar(&importCity, "city", "", "city slug (required)")
	importCSVCmd.Flags().StringVar(&importLayer, "layer", "", "layer slug (required)")
	importCSVCmd.Flags().StringVar(&importNameCol, "name-col", "", "name column override")
	importCSVCmd.Flags().StringVar(&importLatCol, "lat-col", "", "latitude column override")
	importCSVCmd.Flags().StringVar(&importLngCol, "lng-col", "", "longitude column override")
	_ = importCSVCmd.MarkFlagRequired("city")
	_ = importCSVCmd.MarkFlagRequired("layer")

	importCmd.AddCommand(importCSVCmd)
	rootCmd.AddCommand(importCmd)
}
