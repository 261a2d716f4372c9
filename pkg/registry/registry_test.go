// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churn-predictor/internal/common/validation"
	"churn-predictor/internal/models"
)

func TestBuild_SaveLoadValidate(t *testing.T) {
	reg := Build("1.0.0", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, reg.Validate())
	assert.Equal(t, "2026-01-02T03:04:05Z", reg.LastUpdated)
	assert.Len(t, reg.Features, models.FeatureCount)
	assert.Len(t, reg.Stages, 3)

	path := filepath.Join(t.TempDir(), "nested", "pipeline-registry.json")
	require.NoError(t, SaveRegistry(reg, path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())
	assert.Equal(t, reg.Features, loaded.Features)
}

func TestValidate_DetectsDrift(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PipelineRegistry)
	}{
		{"dropped feature", func(r *PipelineRegistry) { r.Features = r.Features[1:] }},
		{"swapped features", func(r *PipelineRegistry) { r.Features[0], r.Features[1] = r.Features[1], r.Features[0] }},
		{"changed range", func(r *PipelineRegistry) { r.Features[7].Max = 20 }},
		{"no schema", func(r *PipelineRegistry) { r.FeatureSchema = nil }},
		{"duplicate stage", func(r *PipelineRegistry) { r.Stages = append(r.Stages, r.Stages[0]) }},
		{"stage without task type", func(r *PipelineRegistry) { r.Stages[1].TaskType = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := Build("1.0.0", time.Now())
			tt.mutate(reg)
			assert.Error(t, reg.Validate())
		})
	}
}

func TestFeatureSchema_ValidatesDefaults(t *testing.T) {
	reg := Build("1.0.0", time.Now())

	doc := map[string]interface{}{}
	for name, v := range models.ChurnSchema().Defaults() {
		doc[name] = v
	}
	res, err := validation.ValidateDocument(doc, reg.FeatureSchema)
	require.NoError(t, err)
	assert.True(t, res.Valid, res.GetErrorMessages())
}
