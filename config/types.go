package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	OMDB    OMDBConfig    `mapstructure:"omdb"`
	Search  SearchConfig  `mapstructure:"search"`
	Output  OutputConfig  `mapstructure:"output"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// OMDBConfig holds OMDb API connection details. The key is looked up in
// APIKey, then APIKeyFile, then the APIKeyEnv environment variable.
type OMDBConfig struct {
	URL        string        `mapstructure:"url"`
	APIKey     string        `mapstructure:"api_key"`
	APIKeyFile string        `mapstructure:"api_key_file"`
	APIKeyEnv  string        `mapstructure:"api_key_env"`
	Timeout    time.Duration `mapstructure:"timeout"` // 0 means no client timeout
}

// SearchConfig controls multi-page searches
type SearchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// OutputConfig controls how results are rendered
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	Verbose bool   `mapstructure:"verbose"`
}

// FilterConfig contains named filter expressions
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
