package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/gisco-cli/internal/config"
	"github.com/sells-group/gisco-cli/internal/db"
	"github.com/sells-group/gisco-cli/internal/nuts"
	"github.com/sells-group/gisco-cli/pkg/geocode"
	"github.com/sells-group/gisco-cli/pkg/gisco"
)

// appEnv holds the clients shared by the commands.
type appEnv struct {
	HTTP     *http.Client
	GISCO    *gisco.Client
	Geocoder *geocode.Service
	Resolver nuts.Resolver // nil unless requested
	Pool     *pgxpool.Pool // set for the postgis strategy
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Pool != nil {
		e.Pool.Close()
	}
}

type envOptions struct {
	withResolver bool
	observer     geocode.Observer
}

// initEnv builds the GISCO client, the selected geocoding provider and,
// when asked, the configured NUTS resolver. Callers should defer env.Close().
func initEnv(ctx context.Context, opts envOptions) (*appEnv, error) {
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}

	hc := &http.Client{Timeout: time.Duration(cfg.GISCO.TimeoutSecs) * time.Second}
	gc := gisco.New(
		gisco.WithBaseURL(cfg.GISCO.BaseURL),
		gisco.WithHTTPClient(hc),
		gisco.WithRateLimit(cfg.GISCO.RateLimit),
		gisco.WithUserAgent(cfg.GISCO.UserAgent),
	)

	name := providerFlag
	if name == "" {
		name = cfg.Providers.Default
	}
	provider, err := geocode.DefaultRegistry().New(name, providerSettings(cfg, name, hc, gc))
	if err != nil {
		return nil, err
	}

	var svcOpts []geocode.ServiceOption
	if opts.observer != nil {
		svcOpts = append(svcOpts, geocode.WithObserver(opts.observer))
	}
	env := &appEnv{
		HTTP:     hc,
		GISCO:    gc,
		Geocoder: geocode.NewService(provider, svcOpts...),
	}

	if opts.withResolver {
		if err := env.initResolver(ctx); err != nil {
			env.Close()
			return nil, err
		}
	}

	zap.L().Debug("environment ready",
		zap.String("provider", provider.Name()),
		zap.Bool("resolver", env.Resolver != nil),
	)
	return env, nil
}

func (e *appEnv) initResolver(ctx context.Context) error {
	strategy, err := nuts.ParseStrategy(cfg.NUTS.Strategy)
	if err != nil {
		return err
	}
	if err := cfg.Validate(string(strategy)); err != nil {
		return err
	}

	switch strategy {
	case nuts.StrategyLocal:
		src := nuts.NewShapefileSource(cfg.NUTS.DataDir, shapefileOptions(cfg.NUTS))
		e.Resolver = nuts.NewLocalResolver(src)
	case nuts.StrategyPostGIS:
		pool, err := db.Connect(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns)
		if err != nil {
			return eris.Wrap(err, "connect postgis")
		}
		e.Pool = pool
		e.Resolver = nuts.NewPostGISResolver(pool, cfg.NUTS.Table)
	default:
		e.Resolver = nuts.NewRemoteResolver(e.GISCO, cfg.NUTS.Year)
	}
	return nil
}

func shapefileOptions(c config.NUTSConfig) nuts.ShapefileOptions {
	return nuts.ShapefileOptions{Scale: c.Scale, Year: c.Year, Proj: c.Proj}
}

// providerSettings picks the credentials and endpoint of the named provider.
func providerSettings(c *config.Config, name string, hc *http.Client, gc *gisco.Client) geocode.Settings {
	s := geocode.Settings{
		UserAgent:  c.GISCO.UserAgent,
		HTTPClient: hc,
		GISCO:      gc,
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "google", "gmaps":
		s.Key = c.Providers.GoogleKey
	case "bing":
		s.Key = c.Providers.BingKey
	case "opencage":
		s.Key = c.Providers.OpenCageKey
	case "geonames":
		s.Username = c.Providers.GeoNamesUsername
	case "osm", "nominatim":
		s.BaseURL = c.Providers.NominatimURL
		s.Email = c.Providers.NominatimEmail
	}
	return s
}
