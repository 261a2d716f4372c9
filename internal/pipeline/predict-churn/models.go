// internal/pipeline/predict-churn/models.go
package predictchurn

import (
	"time"

	"churn-predictor/internal/models"
)

type Input struct {
	RequestID string               `json:"requestId"`
	Vector    models.FeatureVector `json:"-"`
	Names     []string             `json:"names"`
	Labels    []string             `json:"labels"`
}

type Output struct {
	Result   *models.PredictionResult `json:"result"`
	Duration time.Duration            `json:"duration"`
}
