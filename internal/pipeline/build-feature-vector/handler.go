// internal/pipeline/build-feature-vector/handler.go
package buildfeaturevector

import (
	"context"
	"errors"

	apperrors "churn-predictor/internal/common/errors"
	"churn-predictor/internal/common/logger"
	"churn-predictor/internal/models"
)

const (
	TaskType = "build-feature-vector"
)

// ErrSchemaMismatch is wrapped by every SCHEMA_MISMATCH this stage returns.
var ErrSchemaMismatch = errors.New("input set does not match feature schema")

// Handler assembles named scalars into the positional vector the
// classifier consumes. Ranges are not re-checked here; collectors own that.
type Handler struct {
	schema *models.FeatureSchema
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	schema := config.Schema
	if schema == nil {
		schema = models.ChurnSchema()
	}
	return &Handler{
		schema: schema,
		logger: log.WithFields(map[string]interface{}{"stage": TaskType}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	var values map[string]float64
	if input != nil {
		values = input.Values
	}

	var missing, extra []string
	vec := make([]float64, h.schema.Len())
	for i, name := range h.schema.Names() {
		v, ok := values[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		vec[i] = v
	}
	for name := range values {
		if _, _, ok := h.schema.Lookup(name); !ok {
			extra = append(extra, name)
		}
	}

	if len(missing) > 0 || len(extra) > 0 {
		stdErr := apperrors.NewSchemaMismatchError(missing, extra, ErrSchemaMismatch)
		h.logger.Warn("feature vector rejected", map[string]interface{}{
			"requestId": requestID(input),
			"details":   stdErr.Details,
		})
		return nil, stdErr
	}

	h.logger.Debug("feature vector built", map[string]interface{}{
		"requestId": requestID(input),
		"values":    vec,
	})

	return &Output{
		Vector: models.NewFeatureVector(vec),
		Names:  h.schema.Names(),
	}, nil
}

func requestID(input *Input) string {
	if input == nil {
		return ""
	}
	return input.RequestID
}
