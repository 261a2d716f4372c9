// internal/pipeline/present-result/models.go
package presentresult

import "churn-predictor/internal/models"

// Level tells the display how to style a message.
type Level string

const (
	LevelAlert   Level = "alert"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

const (
	MessageLikely   = "The customer is likely to churn!"
	MessageUnlikely = "The customer is unlikely to churn!"

	PredictionLikely   = "Churn Prediction: Likely to Churn"
	PredictionUnlikely = "Churn Prediction: Unlikely to Churn"

	ChartTitle = "Customer Input Data"
	ChartAxis  = "Values"
)

type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

type Input struct {
	Result *models.PredictionResult `json:"result"`
}

// Output is everything the user sees for one completed request.
type Output struct {
	RequestID string               `json:"requestId"`
	Message   Message              `json:"message"`
	Chart     string               `json:"chart"`
	Record    *models.ExportRecord `json:"record"`
	CSV       []byte               `json:"-"`
	FileName  string               `json:"fileName"`
	MimeType  string               `json:"mimeType"`
}
