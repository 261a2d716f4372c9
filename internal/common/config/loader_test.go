// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadFromFile_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, "app:\n  name: churn-predictor\n")

	cfg, err := LoadFromFile(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "models/churn_model.json", cfg.Model.Path)
	assert.True(t, cfg.Session.Interactive)
	assert.True(t, cfg.Export.Enabled)
	assert.Equal(t, "customer_churn_prediction.csv", cfg.Export.Filename)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Empty(t, cfg.Metrics.Address)
	assert.Equal(t, time.Duration(0), cfg.Session.AnalysisDelay())
}

func TestLoadFromFile_FileValues(t *testing.T) {
	path := writeConfig(t, `
model:
  path: /srv/models/churn.json
session:
  analysis_delay_ms: 2000
export:
  dir: /tmp/exports
logging:
  level: debug
  format: json
`)

	cfg, err := LoadFromFile(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/srv/models/churn.json", cfg.Model.Path)
	assert.Equal(t, 2*time.Second, cfg.Session.AnalysisDelay())
	assert.Equal(t, filepath.Join("/tmp/exports", "customer_churn_prediction.csv"), cfg.ExportPath())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "model:\n  path: from-file.json\nlogging:\n  level: warn\n")
	fs := newFlags(t, "--model", "from-flag.json", "--interactive=false", "--profile", "what-if.yaml")

	cfg, err := LoadFromFile(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "from-flag.json", cfg.Model.Path)
	assert.False(t, cfg.Session.Interactive)
	assert.Equal(t, "what-if.yaml", cfg.Session.ProfilePath)
	// unset flags leave file values alone
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("MODEL_PATH", "from-env.json")
	t.Setenv("CHURN_EXPORT_ROOT", "/data/out")
	path := writeConfig(t, "export:\n  dir: ${CHURN_EXPORT_ROOT}/csv\n")

	cfg, err := LoadFromFile(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "from-env.json", cfg.Model.Path)
	assert.Equal(t, "/data/out/csv", cfg.Export.Dir)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "export filename with directory",
			body:    "export:\n  filename: ../escape.csv\n",
			wantErr: "export.filename must be a bare file name",
		},
		{
			name:    "unknown log level",
			body:    "logging:\n  level: verbose\n",
			wantErr: "logging.level must be one of",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_NonInteractiveWithoutProfile(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, "session:\n  interactive: false\n"), nil)
	require.NoError(t, err)
	assert.False(t, cfg.Session.Interactive)
	assert.Empty(t, cfg.Session.ProfilePath)
}

func TestLoad_InteractiveFlagOffWithoutProfile(t *testing.T) {
	path := writeConfig(t, "model:\n  path: explicit.json\n")
	fs := newFlags(t, "--config", path, "--interactive=false")

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.False(t, cfg.Session.Interactive)
	assert.Empty(t, cfg.Session.ProfilePath)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_ExplicitConfigFlag(t *testing.T) {
	path := writeConfig(t, "model:\n  path: explicit.json\n")
	fs := newFlags(t, "--config", path)

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "explicit.json", cfg.Model.Path)
}
