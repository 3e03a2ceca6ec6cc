package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stadtatlas/civic-cli/internal/ingest"
	"github.com/stadtatlas/civic-cli/internal/model"
)

var cityCmd = &cobra.Command{
	Use:   "city",
	Short: "Manage city definitions",
}

// -- city load --

var cityLoadCmd = &cobra.Command{
	Use:   "load <city.yaml>",
	Short: "Create or update a city and its layers from a YAML definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}
		cf, err := ingest.ParseCityFile(data)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		lat, lng := cf.CenterLatLng()
		city, err := st.UpsertCity(ctx, model.City{
			Slug:         cf.City.Slug,
			Name:         cf.City.Name,
			State:        cf.City.State,
			CenterLat:    lat,
			CenterLng:    lng,
			DefaultZoom:  cf.City.Zoom,
			PrimaryColor: cf.Theme.PrimaryColor,
		})
		if err != nil {
			return eris.Wrap(err, "city load")
		}

		for _, l := range cf.Layers {
			visible := true
			if l.Visible != nil {
				visible = *l.Visible
			}
			if _, err := st.UpsertLayer(ctx, model.Layer{
				CityID:           city.ID,
				Slug:             l.Slug,
				Name:             l.Name,
				Icon:             l.Icon,
				Color:            l.Color,
				VisibleByDefault: visible,
			}); err != nil {
				return eris.Wrapf(err, "city load: layer %s", l.Slug)
			}
		}

		zap.L().Info("city loaded",
			zap.String("city", city.Slug),
			zap.Int("layers", len(cf.Layers)),
		)
		return nil
	},
}

// -- city list --

var cityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded cities",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		cities, err := st.ListCities(ctx)
		if err != nil {
			return eris.Wrap(err, "city list")
		}
		if len(cities) == 0 {
			fmt.Fprintln(os.Stderr, "No cities loaded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SLUG\tNAME\tSTATE\tCENTER")
		for _, c := range cities {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.4f,%.4f\n", c.Slug, c.Name, c.State, c.CenterLat, c.CenterLng)
		}
		return w.Flush()
	},
}

func init() {
	cityCmd.AddCommand(cityLoadCmd)
	cityCmd.AddCommand(cityListCmd)
	rootCmd.AddCommand(cityCmd)
}
