package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/gisco-cli/internal/geo"
)

var reverseMatch string

var reverseCmd = &cobra.Command{
	Use:   "reverse <lat,lon>",
	Short: "Resolve coordinates to the nearest place",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, err := geo.ParseCoordinate(strings.Join(args, " "))
		if err != nil {
			return err
		}
		res, err := parseMatch(reverseMatch)
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), envOptions{})
		if err != nil {
			return err
		}
		defer env.Close()

		cands, err := env.Geocoder.Reverse(cmd.Context(), coord, res)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), cands)
	},
}

func init() {
	reverseCmd.Flags().StringVar(&reverseMatch, "match", "first", "candidate handling: first, all or unique")
	rootCmd.AddCommand(reverseCmd)
}
