package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/gisco-cli/internal/geo"
)

var distanceUnit string

type distanceResult struct {
	Unit     string      `json:"unit" yaml:"unit"`
	Distance *float64    `json:"distance,omitempty" yaml:"distance,omitempty"`
	Matrix   [][]float64 `json:"matrix,omitempty" yaml:"matrix,omitempty"`
}

var distanceCmd = &cobra.Command{
	Use:   "distance <lat,lon> <lat,lon> [lat,lon...]",
	Short: "Great-circle distance between two points, or a matrix for more",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := geo.ParseDistanceUnit(distanceUnit)
		if err != nil {
			return err
		}
		coords := make([]geo.Coordinate, 0, len(args))
		for _, a := range args {
			c, err := geo.ParseCoordinate(a)
			if err != nil {
				return err
			}
			coords = append(coords, c)
		}

		out := distanceResult{Unit: string(unit)}
		if len(coords) == 2 {
			d, err := geo.Distance(coords[0], coords[1], unit)
			if err != nil {
				return err
			}
			out.Distance = &d
		} else {
			if out.Matrix, err = geo.DistanceMatrix(coords, unit); err != nil {
				return err
			}
		}
		return printResult(cmd.OutOrStdout(), out)
	},
}

func init() {
	distanceCmd.Flags().StringVarP(&distanceUnit, "unit", "u", "km", "distance unit: m, km, mi or ft")
	rootCmd.AddCommand(distanceCmd)
}
