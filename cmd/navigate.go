package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/district-map/internal/area"
	"github.com/sells-group/district-map/internal/engine"
	"github.com/sells-group/district-map/internal/mapsession"
	"github.com/sells-group/district-map/internal/navigator"
	"github.com/sells-group/district-map/internal/selection"
)

var navigateCmd = &cobra.Command{
	Use:   "navigate <dongCode|guCode> <code>",
	Short: "Run a query-driven selection on an offline map session",
	Long: "Opens a map session against the in-memory engine, optionally selects a base area " +
		"and enters compare mode, runs the query and prints the resulting session state.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		base, _ := cmd.Flags().GetString("base")
		compare, _ := cmd.Flags().GetBool("compare")
		shapes, _ := cmd.Flags().GetBool("shapes")

		plan := navigatePlan{
			Query:   navigator.Query{Type: navigator.QueryType(args[0]), Data: args[1]},
			Compare: compare,
			Shapes:  shapes,
		}
		if base != "" {
			q, err := parseQueryArg(base)
			if err != nil {
				return err
			}
			plan.Base = &q
		}

		return runNavigate(cmd.Context(), cmd.OutOrStdout(), ds, sessionOptions(cfg), plan)
	},
}

// navigatePlan is the sequence of events replayed on the offline session.
type navigatePlan struct {
	Base    *navigator.Query
	Compare bool
	Query   navigator.Query
	Shapes  bool
}

type navigateReport struct {
	Found    bool                    `json:"found"`
	Selected bool                    `json:"selected"`
	Area     *selection.SelectedArea `json:"area,omitempty"`
	Session  mapsession.Snapshot     `json:"session"`
}

func runNavigate(ctx context.Context, out io.Writer, ds *area.Dataset, opts mapsession.Options, plan navigatePlan) error {
	s, err := mapsession.Open(ctx, "cli", ds, engine.NewMemory(), opts)
	if err != nil {
		return err
	}
	defer s.Close()

	if plan.Base != nil {
		res, err := s.Query(*plan.Base)
		if err != nil {
			return eris.Wrap(err, "navigate: base")
		}
		if !res.Found {
			return eris.Errorf("navigate: base %s %q not found", plan.Base.Type, plan.Base.Data)
		}
	}
	if plan.Compare {
		changed, err := s.SetCompare(true)
		if err != nil {
			return eris.Wrap(err, "navigate: compare")
		}
		if !changed {
			zap.L().Warn("navigate: compare needs a selected area; use --base")
		}
	}

	res, err := s.Query(plan.Query)
	if err != nil {
		return eris.Wrap(err, "navigate: query")
	}

	if plan.Shapes {
		data, err := s.GeoJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(navigateReport{
		Found:    res.Found,
		Selected: res.Selected,
		Area:     res.Area,
		Session:  s.Snapshot(),
	})
}

// parseQueryArg parses "dongCode:<code>" or "guCode:<code>".
func parseQueryArg(s string) (navigator.Query, error) {
	typ, code, ok := strings.Cut(s, ":")
	if !ok || code == "" {
		return navigator.Query{}, eris.Errorf("navigate: expected <dongCode|guCode>:<code>, got %q", s)
	}
	q := navigator.Query{Type: navigator.QueryType(typ), Data: code}
	if _, err := q.Granularity(); err != nil {
		return navigator.Query{}, err
	}
	return q, nil
}

func init() {
	navigateCmd.Flags().String("base", "", "select this area first (<dongCode|guCode>:<code>)")
	navigateCmd.Flags().Bool("compare", false, "enter compare mode before the query")
	navigateCmd.Flags().Bool("shapes", false, "print the on-screen shapes as GeoJSON instead of the session state")
	rootCmd.AddCommand(navigateCmd)
}
