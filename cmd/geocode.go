package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/gisco-cli/pkg/geocode"
)

var geocodeMatch string

var geocodeCmd = &cobra.Command{
	Use:   "geocode <place>",
	Short: "Resolve a place name to coordinates",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := parseMatch(geocodeMatch)
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), envOptions{})
		if err != nil {
			return err
		}
		defer env.Close()

		cands, err := env.Geocoder.Forward(cmd.Context(), strings.Join(args, " "), res)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), cands)
	},
}

// parseMatch maps --match to a geocode.Resolution.
func parseMatch(v string) (geocode.Resolution, error) {
	switch strings.ToLower(v) {
	case "", "first":
		return geocode.FirstMatch, nil
	case "all":
		return geocode.AllMatches, nil
	case "unique":
		return geocode.UniqueMatch, nil
	}
	return 0, invalidFlag("match", v, "first, all or unique")
}

func init() {
	geocodeCmd.Flags().StringVar(&geocodeMatch, "match", "first", "candidate handling: first, all or unique")
	rootCmd.AddCommand(geocodeCmd)
}
