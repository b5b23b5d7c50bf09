package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/s0up4200/omdbq/omdb"
)

// EnvPrefix prefixes every environment override, e.g. OMDBQ_OMDB_API_KEY
const EnvPrefix = "OMDBQ"

// Load loads the configuration from file and environment. Without an explicit
// path a missing config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".omdbq"))
		}

		v.AddConfigPath("/etc/omdbq/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// OMDb defaults
	v.SetDefault("omdb.url", omdb.DefaultBaseURL)
	v.SetDefault("omdb.api_key", "")
	v.SetDefault("omdb.api_key_file", "")
	v.SetDefault("omdb.api_key_env", "OMDB_API_KEY")
	v.SetDefault("omdb.timeout", time.Duration(0))

	v.SetDefault("search.concurrency", 1)

	v.SetDefault("output.format", "table")
	v.SetDefault("output.verbose", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.OMDB.URL == "" {
		return fmt.Errorf("omdb.url is required")
	}
	if u, err := url.Parse(cfg.OMDB.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("omdb.url must be an http or https URL: %s", cfg.OMDB.URL)
	}

	// zero keeps the HTTP transport's default
	if cfg.OMDB.Timeout < 0 {
		return fmt.Errorf("omdb.timeout must not be negative")
	}

	if cfg.Search.Concurrency < 1 || cfg.Search.Concurrency > omdb.MaxConcurrency {
		return fmt.Errorf("search.concurrency must be between 1 and %d", omdb.MaxConcurrency)
	}

	validOutputs := map[string]bool{
		"table": true,
		"json":  true,
	}
	if !validOutputs[cfg.Output.Format] {
		return fmt.Errorf("invalid output format: %s (must be 'table' or 'json')", cfg.Output.Format)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	for name, expr := range cfg.Filter.Presets {
		if strings.TrimSpace(expr) == "" {
			return fmt.Errorf("filter preset %q has an empty expression", name)
		}
	}

	return nil
}
