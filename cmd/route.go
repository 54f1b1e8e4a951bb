package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/pkg/gisco"
)

var (
	routeOverview string
	routeSteps    bool
)

var routeCmd = &cobra.Command{
	Use:   "route <lat,lon> <lat,lon> [lat,lon...]",
	Short: "Compute a driving route through GISCO",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		coords := make([]geo.Coordinate, 0, len(args))
		for _, a := range args {
			c, err := geo.ParseCoordinate(a)
			if err != nil {
				return err
			}
			coords = append(coords, c)
		}

		env, err := initEnv(cmd.Context(), envOptions{})
		if err != nil {
			return err
		}
		defer env.Close()

		route, err := env.GISCO.Route(cmd.Context(), coords, gisco.RouteOptions{
			Overview: routeOverview,
			Steps:    routeSteps,
		})
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), route)
	},
}

func init() {
	routeCmd.Flags().StringVar(&routeOverview, "overview", gisco.OverviewSimplified, "route geometry: false, simplified or full")
	routeCmd.Flags().BoolVar(&routeSteps, "steps", false, "include turn-by-turn steps")
	rootCmd.AddCommand(routeCmd)
}
