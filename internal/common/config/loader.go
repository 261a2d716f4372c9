// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps startup flags onto config keys.
var flagKeys = map[string]string{
	"model":           "model.path",
	"profile":         "session.profile_path",
	"interactive":     "session.interactive",
	"export-dir":      "export.dir",
	"log-level":       "logging.level",
	"metrics-address": "metrics.address",
}

// RegisterFlags declares the startup flags Load understands.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a config file (default: configs/config.yaml)")
	fs.String("model", "", "path to the classifier artifact")
	fs.String("profile", "", "YAML customer profile used to prefill or replace the prompts")
	fs.Bool("interactive", true, "prompt for inputs; false runs one prediction from --profile, or from the defaults")
	fs.String("export-dir", "", "directory the prediction CSV is written to")
	fs.String("log-level", "", "debug, info, warn or error")
	fs.String("metrics-address", "", "listen address for /metrics and /health (empty disables)")
}

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml over
// it, then applies environment variables and explicitly set flags. An
// explicit --config file replaces the search and goes through LoadFromFile.
func Load(fs *pflag.FlagSet) (*Config, error) {
	if path := flagString(fs, "config"); path != "" {
		return LoadFromFile(path, fs)
	}
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional overlay

	return finish(v, fs)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string, fs *pflag.FlagSet) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v, fs)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Every key needs a default so AutomaticEnv reaches it on Unmarshal.
	v.SetDefault("app.name", "churn-predictor")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")
	v.SetDefault("model.path", "models/churn_model.json")
	v.SetDefault("session.interactive", true)
	v.SetDefault("session.profile_path", "")
	v.SetDefault("session.analysis_delay_ms", 0)
	v.SetDefault("export.enabled", true)
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.filename", "customer_churn_prediction.csv")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("metrics.address", "")
	return v
}

func finish(v *viper.Viper, fs *pflag.FlagSet) (*Config, error) {
	if err := bindFlags(v, fs); err != nil {
		return nil, err
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// bindFlags only binds flags the operator actually set, so flag defaults
// never shadow values from the config file.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func flagString(fs *pflag.FlagSet, name string) string {
	if fs == nil || fs.Lookup(name) == nil {
		return ""
	}
	s, _ := fs.GetString(name)
	return s
}

// loadEnvFile loads the first .env found walking up to the project root.
func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults restores defaults for values a config file blanked out.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "churn-predictor"
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "."
	}
	if cfg.Export.Filename == "" {
		cfg.Export.Filename = "customer_churn_prediction.csv"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
	if cfg.Session.AnalysisDelayMs < 0 {
		cfg.Session.AnalysisDelayMs = 0
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Model.Path == "" {
		return fmt.Errorf("model.path is required")
	}
	if strings.ContainsAny(cfg.Export.Filename, `/\`) {
		return fmt.Errorf("export.filename must be a bare file name, got %q", cfg.Export.Filename)
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", cfg.Logging.Level)
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// ExportPath is where the prediction record is written.
func (c *Config) ExportPath() string {
	return filepath.Join(c.Export.Dir, c.Export.Filename)
}
