// internal/pipeline/session/config.go
package session

import (
	"time"

	"churn-predictor/internal/common/config"
)

type Config struct {
	AnalysisDelay time.Duration
	ExportEnabled bool
}

// LoadConfig derives the session settings from the application config.
func LoadConfig(appConfig *config.Config) *Config {
	if appConfig == nil {
		return &Config{ExportEnabled: true}
	}
	return &Config{
		AnalysisDelay: appConfig.Session.AnalysisDelay(),
		ExportEnabled: appConfig.Export.Enabled,
	}
}
