package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/gisco-cli/pkg/geocode"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the available geocoding providers and their credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(cmd.OutOrStdout(), geocode.DefaultRegistry().Describe())
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
