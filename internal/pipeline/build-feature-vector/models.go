// internal/pipeline/build-feature-vector/models.go
package buildfeaturevector

import "churn-predictor/internal/models"

type Input struct {
	RequestID string             `json:"requestId"`
	Values    map[string]float64 `json:"values"`
}

type Output struct {
	Vector models.FeatureVector `json:"-"`
	Names  []string             `json:"names"`
}
