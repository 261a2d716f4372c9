// pkg/registry/schema.go
package registry

// PipelineRegistry documents the prediction pipeline for people writing
// profiles and model artifacts: the stages, their error codes and the
// feature schema every input must satisfy.
type PipelineRegistry struct {
	Version       string                 `json:"version"`
	LastUpdated   string                 `json:"lastUpdated"`
	FeatureCount  int                    `json:"featureCount"`
	Features      []Feature              `json:"features"`
	FeatureSchema map[string]interface{} `json:"featureSchema"`
	Stages        []Stage                `json:"stages"`
}

type Feature struct {
	Position int       `json:"position"`
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     string    `json:"type"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	Allowed  []float64 `json:"allowed,omitempty"`
	Default  float64   `json:"default"`
	Group    string    `json:"group"`
}

type Stage struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	TaskType    string   `json:"taskType"`
	ErrorCodes  []string `json:"errorCodes"`
}
