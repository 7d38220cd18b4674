package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	cerr "github.com/saeidalz13/battleship-placement/internal/error"
	mb "github.com/saeidalz13/battleship-placement/models/battleship"
)

const (
	StageProd = "prod"
	StageDev  = "dev"
)

type Config struct {
	Stage           string
	Port            int
	LogLevel        string
	DatabaseURL     string
	GridSize        int
	FleetFile       string
	CleanupInterval time.Duration
	GracePeriod     time.Duration
}

// AnalyticsEnabled reports whether a database was configured.
func (c Config) AnalyticsEnabled() bool {
	return c.DatabaseURL != ""
}

func (c Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

// Load reads the configuration from the environment. Outside of
// prod the variables in envFile are loaded first; a missing file is
// not an error, variables already set in the environment win.
func Load(envFile string) (Config, error) {
	if os.Getenv("STAGE") != StageProd && envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("error reading env file: %v", err)
		}
	}

	viper.SetDefault("STAGE", StageDev)
	viper.SetDefault("PORT", 9191)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("GRID_SIZE", mb.DefaultGridSize)
	viper.SetDefault("FLEET_FILE", "")
	viper.SetDefault("CLEANUP_INTERVAL", "20m")
	viper.SetDefault("GRACE_PERIOD", "2m")
	viper.AutomaticEnv()

	cfg := Config{
		Stage:           viper.GetString("STAGE"),
		Port:            viper.GetInt("PORT"),
		LogLevel:        viper.GetString("LOG_LEVEL"),
		DatabaseURL:     viper.GetString("DATABASE_URL"),
		GridSize:        viper.GetInt("GRID_SIZE"),
		FleetFile:       viper.GetString("FLEET_FILE"),
		CleanupInterval: viper.GetDuration("CLEANUP_INTERVAL"),
		GracePeriod:     viper.GetDuration("GRACE_PERIOD"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Stage != StageDev && c.Stage != StageProd {
		return fmt.Errorf("stage must be either %s or %s, got: %q", StageDev, StageProd, c.Stage)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.GridSize < mb.MinGridSize || c.GridSize > mb.MaxGridSize {
		return cerr.ErrInvalidGridSize(c.GridSize, mb.MinGridSize, mb.MaxGridSize)
	}
	if c.CleanupInterval <= 0 || c.GracePeriod <= 0 {
		return fmt.Errorf("cleanup interval and grace period must be positive")
	}
	return nil
}
