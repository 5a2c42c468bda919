package model

// Config holds the full qforge configuration.
//
// Hierarchy (highest to lowest priority):
//  1. CLI flags
//  2. Environment variables (QFORGE_*)
//  3. Config file (~/.qforge/config.yaml)
//  4. Defaults
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Profile ProfileConfig `yaml:"profile" mapstructure:"profile"`
	Match   MatchConfig   `yaml:"match" mapstructure:"match"`
	Review  ReviewConfig  `yaml:"review" mapstructure:"review"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
}

// StoreConfig configures the answer bank database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // sqlite file, ~/.qforge/bank.db by default
}

// ProfileConfig configures column profiling.
type ProfileConfig struct {
	SampleSize int `yaml:"sample_size" mapstructure:"sample_size"` // first-N non-empty values kept per column
}

// MatchConfig configures the matching engine.
type MatchConfig struct {
	TopN          int  `yaml:"top_n" mapstructure:"top_n"`
	CacheEnabled  bool `yaml:"cache_enabled" mapstructure:"cache_enabled"`
	CacheTTLHours int  `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// ReviewConfig configures batch review runs.
type ReviewConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig configures CLI output behavior.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults for all settings.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path: "", // resolved to ~/.qforge/bank.db by the CLI when empty
		},
		Profile: ProfileConfig{
			SampleSize: 5,
		},
		Match: MatchConfig{
			TopN:          5,
			CacheEnabled:  true,
			CacheTTLHours: 1,
		},
		Review: ReviewConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}
