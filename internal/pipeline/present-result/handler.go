// internal/pipeline/present-result/handler.go
package presentresult

import (
	"context"
	"fmt"
	"math"
	"strings"

	apperrors "churn-predictor/internal/common/errors"
	"churn-predictor/internal/common/logger"
	"churn-predictor/internal/models"
)

const TaskType = "present-result"

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"stage": TaskType}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil || input.Result == nil {
		return nil, apperrors.Normalize(fmt.Errorf("present-result: no prediction result"))
	}
	res := input.Result
	if !res.Label.Valid() {
		return nil, apperrors.NewInferenceError(fmt.Errorf("present-result: invalid label %d", int(res.Label)))
	}

	record, err := BuildRecord(res)
	if err != nil {
		return nil, err
	}
	data, err := EncodeCSV(record)
	if err != nil {
		return nil, apperrors.NewExportFailedError(h.config.FileName, err)
	}

	out := &Output{
		RequestID: res.RequestID,
		Message:   MessageFor(res.Label),
		Chart:     RenderChart(res.Labels, res.Vector.Values(), h.config.ChartWidth),
		Record:    record,
		CSV:       data,
		FileName:  h.config.FileName,
		MimeType:  h.config.MimeType,
	}

	h.logger.Info("result presented", map[string]interface{}{
		"requestId": res.RequestID,
		"level":     string(out.Message.Level),
		"rows":      len(record.Rows),
	})
	return out, nil
}

// MessageFor is the two-way message policy. There are no confidence tiers.
func MessageFor(label models.Label) Message {
	if label == models.LabelChurn {
		return Message{Level: LevelAlert, Text: MessageLikely}
	}
	return Message{Level: LevelSuccess, Text: MessageUnlikely}
}

// PredictionText is the description appended to the export record.
func PredictionText(label models.Label) string {
	if label == models.LabelChurn {
		return PredictionLikely
	}
	return PredictionUnlikely
}

// BuildRecord pairs each display label with the value that was actually
// fed to the classifier.
func BuildRecord(res *models.PredictionResult) (*models.ExportRecord, error) {
	values := res.Vector.Values()
	if len(res.Labels) != len(values) {
		return nil, apperrors.Normalize(fmt.Errorf("present-result: %d labels for %d values", len(res.Labels), len(values)))
	}
	rows := make([]models.ExportRow, len(values))
	for i, v := range values {
		rows[i] = models.ExportRow{Feature: res.Labels[i], Value: v}
	}
	return &models.ExportRecord{Rows: rows, Prediction: PredictionText(res.Label)}, nil
}

// RenderChart draws one horizontal bar per value, in the order given, with
// the value printed to one decimal place. The largest value spans width
// cells; negative values draw no bar.
func RenderChart(labels []string, values []float64, width int) string {
	if width <= 0 {
		width = LoadConfig().ChartWidth
	}
	labelWidth := 0
	for _, l := range labels {
		if n := len([]rune(l)); n > labelWidth {
			labelWidth = n
		}
	}
	peak := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}

	var b strings.Builder
	b.WriteString(ChartTitle)
	b.WriteByte('\n')
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		cells := 0
		if peak > 0 && v > 0 {
			cells = int(math.Round(v / peak * float64(width)))
		}
		fmt.Fprintf(&b, "%-*s |%s %.1f\n", labelWidth, label, strings.Repeat("█", cells), v)
	}
	fmt.Fprintf(&b, "%*s  %s\n", labelWidth, "", ChartAxis)
	return b.String()
}
