// internal/common/classifier/artifact.go
package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	apperrors "churn-predictor/internal/common/errors"
	"churn-predictor/internal/common/validation"
	"churn-predictor/internal/models"
)

const (
	KindLogistic     = "logistic"
	KindTreeEnsemble = "tree_ensemble"
)

// Artifact is the on-disk form of a trained classifier.
type Artifact struct {
	Kind         string       `json:"kind"`
	NFeatures    int          `json:"n_features"`
	FeatureNames []string     `json:"feature_names,omitempty"`
	Weights      []float64    `json:"weights,omitempty"`
	Bias         float64      `json:"bias,omitempty"`
	Mean         []float64    `json:"mean,omitempty"`
	Scale        []float64    `json:"scale,omitempty"`
	Threshold    float64      `json:"threshold,omitempty"`
	Trees        [][]TreeNode `json:"trees,omitempty"`
}

const artifactSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["kind", "n_features"],
  "properties": {
    "kind": {"enum": ["logistic", "tree_ensemble"]},
    "n_features": {"type": "integer", "minimum": 1},
    "feature_names": {"type": "array", "items": {"type": "string"}},
    "weights": {"type": "array", "items": {"type": "number"}, "minItems": 1},
    "bias": {"type": "number"},
    "mean": {"type": "array", "items": {"type": "number"}},
    "scale": {"type": "array", "items": {"type": "number"}},
    "threshold": {"type": "number", "exclusiveMinimum": 0, "exclusiveMaximum": 1},
    "trees": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "array",
        "minItems": 1,
        "items": {
          "type": "object",
          "required": ["left", "right"],
          "properties": {
            "feature": {"type": "integer"},
            "threshold": {"type": "number"},
            "left": {"type": "integer"},
            "right": {"type": "integer"},
            "value": {"type": "integer", "enum": [0, 1]}
          }
        }
      }
    }
  },
  "allOf": [
    {
      "if": {"properties": {"kind": {"const": "logistic"}}},
      "then": {"required": ["weights"]}
    },
    {
      "if": {"properties": {"kind": {"const": "tree_ensemble"}}},
      "then": {"required": ["trees"]}
    }
  ]
}`

// LoadFromFile reads, validates and builds the classifier at path. Every
// failure comes back as a MODEL_UNAVAILABLE StandardError.
func LoadFromFile(path string, schema *models.FeatureSchema) (Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewModelUnavailableError(path, err)
	}
	c, err := Parse(data, schema)
	if err != nil {
		return nil, apperrors.NewModelUnavailableError(path, err)
	}
	return c, nil
}

// Parse validates raw artifact JSON against the artifact schema and the
// feature schema, then builds the matching classifier.
func Parse(data []byte, schema *models.FeatureSchema) (Classifier, error) {
	res, err := validation.ValidateJSON(data, artifactSchema)
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, fmt.Errorf("invalid artifact: %s", strings.Join(res.GetErrorMessages(), "; "))
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if err := a.checkAgainst(schema); err != nil {
		return nil, err
	}

	switch a.Kind {
	case KindLogistic:
		if len(a.Weights) != a.NFeatures {
			return nil, fmt.Errorf("artifact has %d weights for %d features", len(a.Weights), a.NFeatures)
		}
		return NewLogistic(a.Weights, a.Bias, a.Mean, a.Scale, a.Threshold)
	case KindTreeEnsemble:
		return NewTreeEnsemble(a.Trees, a.NFeatures)
	default:
		return nil, fmt.Errorf("unsupported artifact kind %q", a.Kind)
	}
}

func (a *Artifact) checkAgainst(schema *models.FeatureSchema) error {
	if schema == nil {
		return nil
	}
	if a.NFeatures != schema.Len() {
		return fmt.Errorf("artifact expects %d features, schema has %d", a.NFeatures, schema.Len())
	}
	if len(a.FeatureNames) == 0 {
		return nil
	}
	names := schema.Names()
	if len(a.FeatureNames) != len(names) {
		return fmt.Errorf("artifact lists %d feature names, schema has %d", len(a.FeatureNames), len(names))
	}
	for i, n := range names {
		if a.FeatureNames[i] != n {
			return fmt.Errorf("artifact feature %d is %q, schema expects %q", i, a.FeatureNames[i], n)
		}
	}
	return nil
}
