package config

// Config represents the complete application configuration
type Config struct {
	// Application
	App AppConfig `yaml:"app" json:"app"`

	// Data Sources
	Data DataConfig `yaml:"data" json:"data"`

	// Result Cache
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Output
	Output OutputConfig `yaml:"output" json:"output"`
}

// AppConfig contains general application settings
type AppConfig struct {
	Name     string `yaml:"name" json:"name"`
	Version  string `yaml:"version" json:"version"`
	LogLevel string `yaml:"log_level" json:"log_level"`
	LogFile  string `yaml:"log_file" json:"log_file"`
	Timezone string `yaml:"timezone" json:"timezone"`
}

// DataConfig contains data source settings
type DataConfig struct {
	Paths []string `yaml:"paths" json:"paths"`
}

// CacheConfig contains result cache settings
type CacheConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Dir     string `yaml:"dir" json:"dir"`
}

// OutputConfig contains report output settings
type OutputConfig struct {
	Format string `yaml:"format" json:"format"` // table, json, csv, summary
	Period string `yaml:"period" json:"period"` // period selector for the period table
}

// Version will be set at build time
var Version = "dev"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:     "turnstat",
			Version:  Version,
			LogLevel: "info",
			LogFile:  "",
			Timezone: "Local",
		},
		Data: DataConfig{},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "", // empty uses the cache package default
		},
		Output: OutputConfig{
			Format: "table",
			Period: "day",
		},
	}
}
