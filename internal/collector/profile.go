// internal/collector/profile.go
package collector

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "churn-predictor/internal/common/errors"
	"churn-predictor/internal/common/validation"
	"churn-predictor/internal/models"
)

// LoadProfile reads a what-if customer profile: a flat YAML mapping of field
// name to value. Fields left out take their schema default. Unknown fields
// and out-of-domain values fail with INPUT_VALIDATION_FAILED; unreadable
// files fail with PROFILE_LOAD_FAILED.
func LoadProfile(path string, schema *models.FeatureSchema) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewProfileLoadFailedError(path, err)
	}
	return ParseProfile(data, path, schema)
}

// ParseProfile is LoadProfile on bytes already in memory. source only
// labels errors.
func ParseProfile(data []byte, source string, schema *models.FeatureSchema) (map[string]float64, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.NewProfileLoadFailedError(source, err)
	}

	doc := make(map[string]interface{}, schema.Len())
	for name, v := range schema.Defaults() {
		doc[name] = v
	}
	for name, v := range raw {
		doc[name] = v
	}

	res, err := validation.ValidateDocument(doc, schema.JSONSchema())
	if err != nil {
		return nil, apperrors.NewProfileLoadFailedError(source, err)
	}
	if !res.Valid {
		return nil, apperrors.NewInputValidationFailedError(strings.Join(profileErrors(res, schema), "; "))
	}

	values := make(map[string]float64, len(doc))
	for name, v := range doc {
		f, err := toFloat(v)
		if err != nil {
			return nil, apperrors.NewInputValidationFailedError(fmt.Sprintf("%s: %v", name, err))
		}
		values[name] = f
	}
	return values, nil
}

// profileErrors lists schema fields first, in schema order, then anything
// the profile added that the schema does not know.
func profileErrors(res *validation.ValidationResult, schema *models.FeatureSchema) []string {
	var msgs []string
	known := make(map[string]bool, schema.Len())
	for _, name := range schema.Names() {
		known[name] = true
		for _, e := range res.GetErrorsForField(name) {
			msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
		}
	}
	for _, e := range res.Errors {
		if !known[e.Field] {
			msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
		}
	}
	return msgs
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

// Profile is a Collector that replays a profile file for one
// non-interactive request. An empty path yields the schema defaults.
type Profile struct {
	path   string
	schema *models.FeatureSchema
}

func NewProfile(path string, schema *models.FeatureSchema) *Profile {
	return &Profile{path: path, schema: schema}
}

func (p *Profile) Collect(ctx context.Context) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.path == "" {
		return p.schema.Defaults(), nil
	}
	return LoadProfile(p.path, p.schema)
}
