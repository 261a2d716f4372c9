// internal/models/prediction.go
package models

import "time"

// Label is the classifier's hard output.
type Label int

const (
	LabelNoChurn Label = 0
	LabelChurn   Label = 1
)

func (l Label) Valid() bool { return l == LabelNoChurn || l == LabelChurn }

func (l Label) String() string {
	switch l {
	case LabelChurn:
		return "churn"
	case LabelNoChurn:
		return "no_churn"
	default:
		return "invalid"
	}
}

// FeatureVector is the positional encoding of one request's inputs. It is
// built once and never mutated; Values hands out a copy.
type FeatureVector struct {
	values []float64
}

func NewFeatureVector(values []float64) FeatureVector {
	v := make([]float64, len(values))
	copy(v, values)
	return FeatureVector{values: v}
}

func (v FeatureVector) Len() int { return len(v.values) }

func (v FeatureVector) At(i int) float64 { return v.values[i] }

func (v FeatureVector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

// PredictionResult pairs a label with the exact inputs that produced it.
type PredictionResult struct {
	RequestID string        `json:"requestId"`
	Label     Label         `json:"label"`
	Vector    FeatureVector `json:"-"`
	Names     []string      `json:"names"`
	Labels    []string      `json:"labels"`
	Duration  time.Duration `json:"duration"`
}

// ExportRow is one feature line of an export record.
type ExportRow struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// ExportRecord is the downloadable table of one completed request.
type ExportRecord struct {
	Rows       []ExportRow `json:"rows"`
	Prediction string      `json:"prediction"`
}
