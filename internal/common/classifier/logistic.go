// internal/common/classifier/logistic.go
package classifier

import (
	"context"
	"fmt"
	"math"

	"churn-predictor/internal/models"
)

// Logistic is a binary logistic regression with an optional standard
// scaler folded in front of it.
type Logistic struct {
	weights   []float64
	bias      float64
	mean      []float64
	scale     []float64
	threshold float64
}

// NewLogistic copies its inputs. mean and scale may both be nil.
func NewLogistic(weights []float64, bias float64, mean, scale []float64, threshold float64) (*Logistic, error) {
	n := len(weights)
	if n == 0 {
		return nil, fmt.Errorf("logistic: no weights")
	}
	if (mean == nil) != (scale == nil) {
		return nil, fmt.Errorf("logistic: mean and scale must be given together")
	}
	if mean != nil && (len(mean) != n || len(scale) != n) {
		return nil, fmt.Errorf("logistic: scaler has %d/%d entries, weights have %d", len(mean), len(scale), n)
	}
	for i, s := range scale {
		if s == 0 {
			return nil, fmt.Errorf("logistic: scale[%d] is zero", i)
		}
	}
	if threshold <= 0 || threshold >= 1 {
		threshold = 0.5
	}
	return &Logistic{
		weights:   append([]float64(nil), weights...),
		bias:      bias,
		mean:      append([]float64(nil), mean...),
		scale:     append([]float64(nil), scale...),
		threshold: threshold,
	}, nil
}

// Probability returns p(churn). The pipeline only surfaces the hard label.
func (m *Logistic) Probability(vector models.FeatureVector) (float64, error) {
	if err := checkWidth(vector, len(m.weights)); err != nil {
		return 0, err
	}
	sum := m.bias
	for j, w := range m.weights {
		x := vector.At(j)
		if len(m.mean) > 0 {
			x = (x - m.mean[j]) / m.scale[j]
		}
		sum += w * x
	}
	p := sigmoid(sum)
	if math.IsNaN(p) {
		return 0, fmt.Errorf("logistic: non-finite score")
	}
	return p, nil
}

func (m *Logistic) Predict(_ context.Context, vector models.FeatureVector) (models.Label, error) {
	p, err := m.Probability(vector)
	if err != nil {
		return models.LabelNoChurn, err
	}
	if p >= m.threshold {
		return models.LabelChurn, nil
	}
	return models.LabelNoChurn, nil
}

func sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }
