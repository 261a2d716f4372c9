// Package classifier holds the opaque binary churn classifier and its
// artifact loader. A loaded classifier is immutable and safe for
// concurrent use.
package classifier

import (
	"context"
	"errors"
	"fmt"

	"churn-predictor/internal/models"
)

var (
	ErrFeatureCountMismatch = errors.New("feature count mismatch")
	ErrInvalidLabel         = errors.New("classifier returned a label outside {0,1}")
)

// Classifier maps one feature vector to a hard binary label.
type Classifier interface {
	Predict(ctx context.Context, vector models.FeatureVector) (models.Label, error)
}

// Func adapts a plain function to Classifier.
type Func func(ctx context.Context, vector models.FeatureVector) (models.Label, error)

func (f Func) Predict(ctx context.Context, vector models.FeatureVector) (models.Label, error) {
	return f(ctx, vector)
}

func checkWidth(vector models.FeatureVector, want int) error {
	if vector.Len() != want {
		return fmt.Errorf("%w: model expects %d values, got %d", ErrFeatureCountMismatch, want, vector.Len())
	}
	return nil
}
