// internal/pipeline/predict-churn/config.go
package predictchurn

import "churn-predictor/internal/models"

type Config struct {
	Schema *models.FeatureSchema
}

func LoadConfig() *Config {
	return &Config{Schema: models.ChurnSchema()}
}
