package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/gisco-cli/internal/geo"
	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// Config holds the full application configuration.
type Config struct {
	GISCO     GISCOConfig     `yaml:"gisco" mapstructure:"gisco"`
	Providers ProvidersConfig `yaml:"providers" mapstructure:"providers"`
	NUTS      NUTSConfig      `yaml:"nuts" mapstructure:"nuts"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// GISCOConfig configures the GISCO web services client.
type GISCOConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ProvidersConfig holds the default geocoding provider and third-party credentials.
type ProvidersConfig struct {
	Default          string `yaml:"default" mapstructure:"default"`
	GoogleKey        string `yaml:"google_key" mapstructure:"google_key"`
	BingKey          string `yaml:"bing_key" mapstructure:"bing_key"`
	OpenCageKey      string `yaml:"opencage_key" mapstructure:"opencage_key"`
	GeoNamesUsername string `yaml:"geonames_username" mapstructure:"geonames_username"`
	NominatimURL     string `yaml:"nominatim_url" mapstructure:"nominatim_url"`
	NominatimEmail   string `yaml:"nominatim_email" mapstructure:"nominatim_email"`
}

// NUTSConfig selects how coordinates are resolved to NUTS regions.
type NUTSConfig struct {
	Strategy string `yaml:"strategy" mapstructure:"strategy"`
	DataDir  string `yaml:"data_dir" mapstructure:"data_dir"`
	Scale    string `yaml:"scale" mapstructure:"scale"`
	Year     int    `yaml:"year" mapstructure:"year"`
	Proj     int    `yaml:"proj" mapstructure:"proj"`
	Table    string `yaml:"table" mapstructure:"table"`
}

// StoreConfig configures the PostGIS backend.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// BatchConfig configures batch geocoding.
type BatchConfig struct {
	Concurrency int   `yaml:"concurrency" mapstructure:"concurrency"`
	Levels      []int `yaml:"levels" mapstructure:"levels"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port            int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins  []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	ShutdownTimeout int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. A .env file in the
// working directory, if present, is loaded into the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GISCO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("gisco.base_url", "https://gisco-services.ec.europa.eu")
	v.SetDefault("gisco.user_agent", "gisco-cli")
	v.SetDefault("gisco.timeout_secs", 30)
	v.SetDefault("gisco.rate_limit", 5.0)
	v.SetDefault("providers.default", "gisco")
	v.SetDefault("providers.nominatim_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("providers.nominatim_email", "")
	v.SetDefault("providers.google_key", "")
	v.SetDefault("providers.bing_key", "")
	v.SetDefault("providers.opencage_key", "")
	v.SetDefault("providers.geonames_username", "")
	v.SetDefault("store.database_url", "")
	v.SetDefault("nuts.strategy", "remote")
	v.SetDefault("nuts.data_dir", "data/nuts")
	v.SetDefault("nuts.scale", "01M")
	v.SetDefault("nuts.year", 2013)
	v.SetDefault("nuts.proj", 4326)
	v.SetDefault("nuts.table", "nuts.regions")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("batch.concurrency", 1)
	v.SetDefault("batch.levels", []int{0, 1, 2, 3})
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are
// "serve", "postgis" and "local"; any other mode only checks common fields.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.GISCO.BaseURL == "" {
		problems = append(problems, "gisco.base_url is required")
	}
	if c.GISCO.RateLimit < 0 {
		problems = append(problems, "gisco.rate_limit must not be negative")
	}
	if c.Batch.Concurrency < 1 {
		problems = append(problems, "batch.concurrency must be at least 1")
	}
	for _, l := range c.Batch.Levels {
		if l < 0 || l > 3 {
			problems = append(problems, fmt.Sprintf("batch.levels contains %d, expected 0-3", l))
		}
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
		}
	case "postgis":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
		problems = c.NUTS.checkProj(problems)
	case "local":
		if c.NUTS.DataDir == "" {
			problems = append(problems, "nuts.data_dir is required")
		}
		problems = c.NUTS.checkProj(problems)
	}

	if len(problems) > 0 {
		return geoerr.InvalidArgument("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// checkProj rejects projected vintages. Local and PostGIS lookups compare
// WGS84 lon/lat points against the stored geometries without reprojecting.
func (n NUTSConfig) checkProj(problems []string) []string {
	if n.Proj != 0 && n.Proj != geo.SRID {
		problems = append(problems, fmt.Sprintf("nuts.proj %d is not supported, only %d (WGS84) can be resolved", n.Proj, geo.SRID))
	}
	return problems
}
