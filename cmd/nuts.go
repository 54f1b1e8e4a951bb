package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/gisco-cli/internal/db"
	"github.com/sells-group/gisco-cli/internal/feature"
	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/nuts"
)

var (
	nutsLevels string
	nutsMerge  bool
	nutsIs     string
)

var nutsCmd = &cobra.Command{
	Use:   "nuts",
	Short: "Find NUTS regions and manage local NUTS data",
}

type nutsFindResult struct {
	Query      string         `json:"query" yaml:"query"`
	Coordinate geo.Coordinate `json:"coordinate" yaml:"coordinate"`
	Regions    []nuts.Region  `json:"regions" yaml:"regions"`
	InRegion   *bool          `json:"in_region,omitempty" yaml:"in_region,omitempty"`
}

var nutsFindCmd = &cobra.Command{
	Use:   "find <place | lat,lon>",
	Short: "Find the NUTS regions containing a place or coordinate",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		levels, err := parseLevels(nutsLevels)
		if err != nil {
			return err
		}
		if levels == nil {
			levels = nuts.Levels
		}

		env, err := initEnv(ctx, envOptions{withResolver: true})
		if err != nil {
			return err
		}
		defer env.Close()

		query := strings.Join(args, " ")
		loc, err := newLocation(query, env)
		if err != nil {
			return err
		}

		out := nutsFindResult{Query: query}
		if nutsIs != "" {
			ok, err := loc.IsNUTS(ctx, nutsIs)
			if err != nil {
				return err
			}
			out.InRegion = &ok
		}
		if out.Regions, err = loc.NUTSRegions(ctx, levels); err != nil {
			return err
		}
		if out.Coordinate, err = loc.Coordinate(ctx); err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), out)
	},
}

// newLocation treats query as a coordinate when it parses as one and as a
// place name otherwise.
func newLocation(query string, env *appEnv) (*feature.Location, error) {
	if coord, err := geo.ParseCoordinate(query); err == nil {
		return feature.NewLocationFromCoordinate(coord, env.Geocoder, env.Resolver)
	}
	return feature.NewLocationFromPlace(query, env.Geocoder, env.Resolver)
}

var nutsDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the GISCO NUTS shapefiles into the configured data dir",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), envOptions{})
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := nuts.Download(cmd.Context(), env.HTTP, nuts.DownloadOptions{
			Dir:       cfg.NUTS.DataDir,
			Shapefile: shapefileOptions(cfg.NUTS),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "extracted %d files into %s\n", n, cfg.NUTS.DataDir)
		return nil
	},
}

var nutsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Load local NUTS shapefiles into PostGIS",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("postgis"); err != nil {
			return err
		}
		levels, err := parseLevels(nutsLevels)
		if err != nil {
			return err
		}

		pool, err := db.Connect(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns)
		if err != nil {
			return eris.Wrap(err, "connect postgis")
		}
		defer pool.Close()

		src := nuts.NewShapefileSource(cfg.NUTS.DataDir, shapefileOptions(cfg.NUTS))
		n, err := nuts.Import(ctx, pool, src, nuts.ImportOptions{
			Table:  cfg.NUTS.Table,
			Year:   cfg.NUTS.Year,
			Levels: levels,
			Merge:  nutsMerge,
		})
		if err != nil {
			return err
		}
		zap.L().Info("NUTS import complete", zap.Int64("rows", n), zap.String("table", cfg.NUTS.Table))
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d regions into %s\n", n, cfg.NUTS.Table)
		return nil
	},
}

func init() {
	nutsFindCmd.Flags().StringVar(&nutsLevels, "levels", "", "comma-separated NUTS levels (default 0,1,2,3)")
	nutsFindCmd.Flags().StringVar(&nutsIs, "is", "", "also report whether the location lies in this NUTS id")
	nutsImportCmd.Flags().StringVar(&nutsLevels, "levels", "", "comma-separated NUTS levels (default 0,1,2,3)")
	nutsImportCmd.Flags().BoolVar(&nutsMerge, "merge", false, "upsert regions instead of replacing each level")

	nutsCmd.AddCommand(nutsFindCmd, nutsDownloadCmd, nutsImportCmd)
	rootCmd.AddCommand(nutsCmd)
}
