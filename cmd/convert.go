package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Unit and coordinate helpers",
}

type convertResult struct {
	Value float64  `json:"value" yaml:"value"`
	Unit  string   `json:"unit" yaml:"unit"`
	DPS   *geo.DPS `json:"dps,omitempty" yaml:"dps,omitempty"`
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, geoerr.InvalidArgument("%q is not a number", s)
	}
	return v, nil
}

var convertDistanceCmd = &cobra.Command{
	Use:   "distance <value> <from> <to>",
	Short: "Convert a distance between m, km, mi and ft",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseNumber(args[0])
		if err != nil {
			return err
		}
		from, err := geo.ParseDistanceUnit(args[1])
		if err != nil {
			return err
		}
		to, err := geo.ParseDistanceUnit(args[2])
		if err != nil {
			return err
		}
		out, err := geo.ConvertDistance(v, from, to)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), convertResult{Value: out, Unit: string(to)})
	},
}

var convertAngleCmd = &cobra.Command{
	Use:   "angle <value> <deg|rad>",
	Short: "Convert an angle between degrees and radians, with its degrees/primes/seconds form",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseNumber(args[0])
		if err != nil {
			return err
		}
		from := geo.AngleUnit(args[1])
		to := geo.Radians
		if from == geo.Radians {
			to = geo.Degrees
		}
		out, err := geo.ConvertAngle(v, from, to)
		if err != nil {
			return err
		}
		deg := v
		if from == geo.Radians {
			deg = out
		}
		dps := geo.DegToDPS(deg)
		return printResult(cmd.OutOrStdout(), convertResult{Value: out, Unit: string(to), DPS: &dps})
	},
}

var bboxKM float64

var convertBBoxCmd = &cobra.Command{
	Use:   "bbox <lat,lon>",
	Short: "Bounding box of every point within --km of a coordinate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := geo.ParseCoordinate(args[0])
		if err != nil {
			return err
		}
		b, err := geo.BoundingBox(c, bboxKM)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), b)
	},
}

func init() {
	convertBBoxCmd.Flags().Float64Var(&bboxKM, "km", 10, "radius in kilometers")
	convertCmd.AddCommand(convertDistanceCmd, convertAngleCmd, convertBBoxCmd)
	rootCmd.AddCommand(convertCmd)
}
