package config

import (
	"log/slog"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port      string
	DBPath    string
	RatesFile string
	LogLevel  slog.Level
	DevMode   bool
}

// Load reads configuration from environment variables, falling back to
// defaults suitable for local development.
func Load() (*Config, error) {
	viper.SetEnvPrefix("TABSPLIT")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DB_PATH", "data/tabsplit.db")
	viper.SetDefault("RATES_FILE", "")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DEV_MODE", false)

	cfg := &Config{
		Port:      viper.GetString("PORT"),
		DBPath:    viper.GetString("DB_PATH"),
		RatesFile: viper.GetString("RATES_FILE"),
		DevMode:   viper.GetBool("DEV_MODE"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(viper.GetString("LOG_LEVEL"))); err != nil {
		cfg.LogLevel = slog.LevelInfo
	}

	return cfg, nil
}
