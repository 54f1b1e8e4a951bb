package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/gisco-cli/internal/config"
)

var (
	cfg *config.Config

	providerFlag string
	outputFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "gisco",
	Short: "Geocoding and NUTS region lookup over Eurostat GISCO services",
	Long: "Resolves place names to coordinates and back through GISCO or a third-party geocoder, " +
		"finds the NUTS regions containing a point (remotely, from local shapefiles or from PostGIS), " +
		"and computes routes and distances.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&providerFlag, "provider", "p", "", "geocoding provider (default from config)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "json", "output format: json or yaml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
