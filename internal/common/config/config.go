// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Model   ModelConfig   `mapstructure:"model"`
	Session SessionConfig `mapstructure:"session"`
	Export  ExportConfig  `mapstructure:"export"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ModelConfig points at the classifier artifact loaded once at startup.
type ModelConfig struct {
	Path string `mapstructure:"path"`
}

// SessionConfig controls the interactive prediction loop.
type SessionConfig struct {
	Interactive     bool   `mapstructure:"interactive"`
	ProfilePath     string `mapstructure:"profile_path"`
	AnalysisDelayMs int    `mapstructure:"analysis_delay_ms"`
}

// AnalysisDelay is how long the busy indicator stays up before the
// classifier is invoked.
func (s SessionConfig) AnalysisDelay() time.Duration {
	return GetDuration(s.AnalysisDelayMs)
}

// ExportConfig holds settings for the downloadable prediction record.
type ExportConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Dir      string `mapstructure:"dir"`
	Filename string `mapstructure:"filename"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds the optional /metrics listener. Empty Address
// disables it.
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}
