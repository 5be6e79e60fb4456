package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server (bridge surface consumed by the UI process)
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"` // development | production

	// Local mirror database (SQLite file, one per install)
	LocalDBPath string `mapstructure:"LOCAL_DB_PATH"`

	// Remote API
	RemoteAPIURL  string        `mapstructure:"REMOTE_API_URL"`
	RemoteTimeout time.Duration `mapstructure:"REMOTE_TIMEOUT"`

	// Sync
	// SyncSettleDelay is waited after an offline→online transition before a
	// drain starts, so a still-stabilizing connection is not raced.
	SyncSettleDelay time.Duration `mapstructure:"SYNC_SETTLE_DELAY"`
	// ProbeInterval > 0 enables the background reachability probe; 0 leaves
	// connectivity entirely to transition events reported by the UI.
	ProbeInterval time.Duration `mapstructure:"PROBE_INTERVAL"`

	// Business
	// MaxComandaNumero bounds valid comanda numbers: 1..MaxComandaNumero.
	MaxComandaNumero int `mapstructure:"MAX_COMANDA_NUMERO"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for development
	viper.SetDefault("PORT", 3030)
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOCAL_DB_PATH", "systmix.offline.sqlite")
	viper.SetDefault("REMOTE_API_URL", "http://localhost:8000")
	viper.SetDefault("REMOTE_TIMEOUT", "30s")
	viper.SetDefault("SYNC_SETTLE_DELAY", "1s")
	viper.SetDefault("PROBE_INTERVAL", "15s")
	viper.SetDefault("MAX_COMANDA_NUMERO", 200)

	// Optional .env file for local development — does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
