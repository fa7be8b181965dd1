package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/district-map/internal/area"
)

var areasCmd = &cobra.Command{
	Use:   "areas",
	Short: "Inspect the boundary dataset",
	Long:  "Commands for listing, searching, and showing dong and gu boundaries.",
}

// -- areas list --

var areasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List areas",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		g, err := granularityFlag(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		var features []*area.Feature
		for _, level := range []area.Granularity{area.Dong, area.Gu} {
			if g != "" && g != level {
				continue
			}
			features = append(features, ds.Features(level)...)
		}
		if limit > 0 && len(features) > limit {
			features = features[:limit]
		}

		if len(features) == 0 {
			fmt.Fprintln(os.Stderr, "No areas found.")
			return nil
		}
		formatAreaList(cmd.OutOrStdout(), features)
		return nil
	},
}

// -- areas search --

var areasSearchCmd = &cobra.Command{
	Use:   "search <name-or-code>",
	Short: "Search areas by name or code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		g, err := granularityFlag(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		features := ds.Search(args[0], g, limit)
		if len(features) == 0 {
			fmt.Fprintln(os.Stderr, "No areas found.")
			return nil
		}
		formatAreaList(cmd.OutOrStdout(), features)
		return nil
	},
}

// -- areas show --

var areasShowCmd = &cobra.Command{
	Use:   "show <dong|gu> <code>",
	Short: "Show one area with its bounds and computed area",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		g, err := area.ParseGranularity(args[0])
		if err != nil {
			return err
		}
		f, ok := ds.Lookup(g, args[1])
		if !ok {
			return eris.Errorf("areas show: no %s with code %q", g, args[1])
		}

		asGeoJSON, _ := cmd.Flags().GetBool("geojson")
		return writeArea(cmd.OutOrStdout(), f, asGeoJSON)
	},
}

func granularityFlag(cmd *cobra.Command) (area.Granularity, error) {
	raw, _ := cmd.Flags().GetString("type")
	if raw == "" {
		return "", nil
	}
	return area.ParseGranularity(raw)
}

// formatAreaList writes a tabular list of areas to out.
func formatAreaList(out io.Writer, features []*area.Feature) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TYPE\tCODE\tNAME\tAREA_KM2")
	for _, f := range features {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\n", f.Granularity, f.Code, f.Name, f.Area()/1e6)
	}
	_ = w.Flush()
}

type areaDetail struct {
	Code         string           `json:"code"`
	Name         string           `json:"name"`
	Granularity  area.Granularity `json:"granularity"`
	ComputedArea int64            `json:"computed_area"`
	Bounds       area.Bounds      `json:"bounds"`
	Center       area.LatLng      `json:"center"`
	Points       int              `json:"points"`
}

func writeArea(out io.Writer, f *area.Feature, asGeoJSON bool) error {
	if asGeoJSON {
		data, err := json.Marshal(&geojson.Feature{
			ID:       f.Code,
			Geometry: f.Polygon(),
			Properties: map[string]any{
				"name":        f.Name,
				"granularity": string(f.Granularity),
			},
		})
		if err != nil {
			return eris.Wrap(err, "areas show: encode geojson")
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	b := f.Bounds()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(areaDetail{
		Code:         f.Code,
		Name:         f.Name,
		Granularity:  f.Granularity,
		ComputedArea: int64(math.Floor(f.Area())),
		Bounds:       b,
		Center:       b.Center(),
		Points:       len(f.Path),
	})
}

func init() {
	areasListCmd.Flags().String("type", "", "filter by granularity (dong, gu)")
	areasListCmd.Flags().Int("limit", 0, "max number of areas to display (0 = all)")

	areasSearchCmd.Flags().String("type", "", "filter by granularity (dong, gu)")
	areasSearchCmd.Flags().Int("limit", 20, "max number of matches")

	areasShowCmd.Flags().Bool("geojson", false, "print the boundary as a GeoJSON feature")

	areasCmd.AddCommand(areasListCmd)
	areasCmd.AddCommand(areasSearchCmd)
	areasCmd.AddCommand(areasShowCmd)
	rootCmd.AddCommand(areasCmd)
}
