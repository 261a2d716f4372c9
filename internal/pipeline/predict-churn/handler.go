// internal/pipeline/predict-churn/handler.go
package predictchurn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"churn-predictor/internal/common/classifier"
	apperrors "churn-predictor/internal/common/errors"
	"churn-predictor/internal/common/logger"
	"churn-predictor/internal/common/metrics"
	"churn-predictor/internal/common/observability"
	"churn-predictor/internal/models"
)

const TaskType = "predict-churn"

// ErrNoClassifier is the cause of MODEL_UNAVAILABLE when a handler is asked
// to predict without a loaded classifier.
var ErrNoClassifier = errors.New("no classifier loaded")

// ErrClassifierPanicked wraps a panic recovered from the classifier.
var ErrClassifierPanicked = errors.New("classifier panicked")

type Handler struct {
	config     *Config
	classifier classifier.Classifier
	metrics    *metrics.Metrics
	obs        *observability.Observability
	logger     logger.Logger
}

type HandlerOptions struct {
	Config        *Config
	Classifier    classifier.Classifier
	Metrics       *metrics.Metrics
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) *Handler {
	cfg := opts.Config
	if cfg == nil {
		cfg = LoadConfig()
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Handler{
		config:     cfg,
		classifier: opts.Classifier,
		metrics:    opts.Metrics,
		obs:        opts.Observability,
		logger:     log.WithFields(map[string]interface{}{"stage": TaskType}),
	}
}

// Ready reports whether a classifier is attached.
func (h *Handler) Ready() bool { return h.classifier != nil }

// Execute runs the classifier once, synchronously. It never retries.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if h.classifier == nil {
		return nil, apperrors.NewModelUnavailableError("", ErrNoClassifier)
	}
	if input == nil {
		return nil, apperrors.NewInferenceError(fmt.Errorf("no input"))
	}

	ctx, span := h.obs.StartSpan(ctx, TaskType, input.RequestID)
	defer span.End()

	start := time.Now()
	label, err := h.invoke(ctx, input.Vector)
	duration := time.Since(start)
	if err == nil && !label.Valid() {
		err = fmt.Errorf("%w: %d", classifier.ErrInvalidLabel, int(label))
	}
	if err != nil {
		stdErr := apperrors.NewInferenceError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, stdErr.Message)
		h.metrics.ObserveFailure(string(stdErr.Code))
		h.obs.RecordRequest(ctx, "failed", duration)
		h.logger.Warn("classifier invocation failed", map[string]interface{}{
			"requestId": input.RequestID,
			"error":     err.Error(),
		})
		return nil, stdErr
	}

	span.SetAttributes(attribute.String("prediction.label", label.String()))
	h.metrics.ObservePrediction(label.String(), duration)
	h.obs.RecordRequest(ctx, label.String(), duration)

	names := input.Names
	if names == nil {
		names = h.config.Schema.Names()
	}
	labels := input.Labels
	if labels == nil {
		labels = h.config.Schema.Labels()
	}

	h.logger.Info("prediction completed", map[string]interface{}{
		"requestId":  input.RequestID,
		"label":      label.String(),
		"durationMs": duration.Milliseconds(),
	})

	return &Output{
		Result: &models.PredictionResult{
			RequestID: input.RequestID,
			Label:     label,
			Vector:    input.Vector,
			Names:     names,
			Labels:    labels,
			Duration:  duration,
		},
		Duration: duration,
	}, nil
}

// invoke calls the classifier, turning a panic inside it into an error.
func (h *Handler) invoke(ctx context.Context, vector models.FeatureVector) (label models.Label, err error) {
	defer func() {
		if r := recover(); r != nil {
			label = models.LabelNoChurn
			err = fmt.Errorf("%w: %v", ErrClassifierPanicked, r)
		}
	}()
	return h.classifier.Predict(ctx, vector)
}
