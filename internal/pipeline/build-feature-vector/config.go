// internal/pipeline/build-feature-vector/config.go
package buildfeaturevector

import "churn-predictor/internal/models"

type Config struct {
	Schema *models.FeatureSchema
}

func LoadConfig() *Config {
	return &Config{Schema: models.ChurnSchema()}
}
