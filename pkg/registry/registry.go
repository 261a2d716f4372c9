// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "churn-predictor/internal/common/errors"
	"churn-predictor/internal/models"
	buildfeaturevector "churn-predictor/internal/pipeline/build-feature-vector"
	predictchurn "churn-predictor/internal/pipeline/predict-churn"
	presentresult "churn-predictor/internal/pipeline/present-result"
)

// Build describes the pipeline as it is compiled into this binary.
func Build(version string, now time.Time) *PipelineRegistry {
	schema := models.ChurnSchema()
	features := make([]Feature, 0, schema.Len())
	for i, f := range schema.Fields() {
		features = append(features, Feature{
			Position: i,
			Name:     f.Name,
			Label:    f.Label,
			Type:     string(f.Type),
			Min:      f.Min,
			Max:      f.Max,
			Allowed:  f.Allowed,
			Default:  f.Default,
			Group:    string(f.Group),
		})
	}

	return &PipelineRegistry{
		Version:       version,
		LastUpdated:   now.UTC().Format(time.RFC3339),
		FeatureCount:  schema.Len(),
		Features:      features,
		FeatureSchema: schema.JSONSchema(),
		Stages: []Stage{
			{
				ID:          buildfeaturevector.TaskType,
				DisplayName: "Build Feature Vector",
				Description: "Assembles the named inputs into the classifier's positional vector",
				TaskType:    buildfeaturevector.TaskType,
				ErrorCodes:  []string{string(apperrors.ErrCodeSchemaMismatch)},
			},
			{
				ID:          predictchurn.TaskType,
				DisplayName: "Predict Churn",
				Description: "Runs the loaded classifier once on the feature vector",
				TaskType:    predictchurn.TaskType,
				ErrorCodes: []string{
					string(apperrors.ErrCodeModelUnavailable),
					string(apperrors.ErrCodeInferenceError),
				},
			},
			{
				ID:          presentresult.TaskType,
				DisplayName: "Present Result",
				Description: "Builds the message, the input chart and the CSV export record",
				TaskType:    presentresult.TaskType,
				ErrorCodes:  []string{string(apperrors.ErrCodeExportFailed)},
			},
		},
	}
}

func LoadRegistry(path string) (*PipelineRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg PipelineRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// SaveRegistry writes reg as indented JSON, creating parent directories.
func SaveRegistry(reg *PipelineRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Validate checks a registry file still matches the compiled schema.
func (r *PipelineRegistry) Validate() error {
	schema := models.ChurnSchema()
	if r.FeatureCount != schema.Len() || len(r.Features) != schema.Len() {
		return fmt.Errorf("registry lists %d features, schema has %d", len(r.Features), schema.Len())
	}
	for i, f := range r.Features {
		want := schema.Field(i)
		if f.Position != i || f.Name != want.Name {
			return fmt.Errorf("feature %d is %q, schema expects %q", i, f.Name, want.Name)
		}
		if f.Min != want.Min || f.Max != want.Max || f.Type != string(want.Type) {
			return fmt.Errorf("feature %s domain differs from schema", f.Name)
		}
	}
	if len(r.FeatureSchema) == 0 {
		return fmt.Errorf("registry has no feature schema")
	}

	ids := make(map[string]bool)
	for _, s := range r.Stages {
		if s.ID == "" {
			return fmt.Errorf("stage missing required field: ID")
		}
		if ids[s.ID] {
			return fmt.Errorf("duplicate stage ID: %s", s.ID)
		}
		ids[s.ID] = true
		if s.TaskType == "" {
			return fmt.Errorf("stage %s missing required field: TaskType", s.ID)
		}
	}
	return nil
}
