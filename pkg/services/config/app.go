package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// App is the full engine configuration. Every field has an explicit
// default and can be overridden via ALERT_ATLAS_* environment variables
// (e.g. ALERT_ATLAS_CACHE_TTL=10m).
type App struct {
	ServerHost string `mapstructure:"server_host" validate:"required"`
	ServerPort string `mapstructure:"server_port" validate:"required"`

	DbPath      string `mapstructure:"db_path" validate:"required"`
	RegionsPath string `mapstructure:"regions_path"`

	CacheTTL     time.Duration `mapstructure:"cache_ttl" validate:"gt=0"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" validate:"gt=0"`

	DefaultGranularity string `mapstructure:"default_granularity" validate:"oneof=day week month"`
	DefaultHorizon     int    `mapstructure:"default_horizon" validate:"gte=1"`
	MinHistory         int    `mapstructure:"min_history" validate:"gte=2"`

	MigrationWatchThreshold float64 `mapstructure:"migration_watch_threshold" validate:"gt=0"`
	MigrationSurgeThreshold float64 `mapstructure:"migration_surge_threshold" validate:"gt=0"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", "8080")
	v.SetDefault("db_path", "alert-atlas.db")
	v.SetDefault("regions_path", "")
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("fetch_timeout", 10*time.Second)
	v.SetDefault("default_granularity", "month")
	v.SetDefault("default_horizon", 6)
	v.SetDefault("min_history", 8)
	v.SetDefault("migration_watch_threshold", 4.0)
	v.SetDefault("migration_surge_threshold", 5.0)
}

// Load builds the configuration from defaults plus the environment.
func Load() (*App, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("ALERT_ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg App
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.MigrationSurgeThreshold < cfg.MigrationWatchThreshold {
		return nil, fmt.Errorf("invalid configuration: surge threshold %.2f below watch threshold %.2f",
			cfg.MigrationSurgeThreshold, cfg.MigrationWatchThreshold)
	}

	return &cfg, nil
}
