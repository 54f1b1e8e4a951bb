package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/gisco-cli/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the geocoding HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		cfg.Server.Port = port
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		// srv is assigned below; upstream calls before that are not recorded.
		var srv *server.Server
		env, err := initEnv(ctx, envOptions{
			withResolver: true,
			observer: func(provider, op string, elapsed time.Duration, err error) {
				if srv != nil {
					srv.Metrics().ObserveUpstream(provider, op, elapsed, err)
				}
			},
		})
		if err != nil {
			return err
		}
		defer env.Close()

		srv = server.New(server.Deps{
			Geocoder: env.Geocoder,
			Provider: env.Geocoder.Provider().Name(),
			Resolver: env.Resolver,
			Router:   env.GISCO,
			Levels:   cfg.Batch.Levels,
		}, server.Options{
			AllowedOrigins:  cfg.Server.AllowedOrigins,
			ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeout) * time.Second,
		})

		return srv.ListenAndServe(ctx, port)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
