// internal/pipeline/session/session_test.go
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churn-predictor/internal/collector"
	"churn-predictor/internal/common/classifier"
	apperrors "churn-predictor/internal/common/errors"
	"churn-predictor/internal/common/logger"
	"churn-predictor/internal/common/metrics"
	"churn-predictor/internal/models"
	predictchurn "churn-predictor/internal/pipeline/predict-churn"
	presentresult "churn-predictor/internal/pipeline/present-result"
)

// ==========================
// Test Doubles
// ==========================

type stubCollector struct {
	values map[string]float64
	err    error
	calls  int
}

func (c *stubCollector) Collect(context.Context) (map[string]float64, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	out := make(map[string]float64, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out, nil
}

type countingClassifier struct {
	mu     sync.Mutex
	label  models.Label
	err    error
	calls  int
	inputs [][]float64
}

func (c *countingClassifier) Predict(_ context.Context, v models.FeatureVector) (models.Label, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.inputs = append(c.inputs, v.Values())
	return c.label, c.err
}

type recordingDisplay struct {
	busy     int
	messages []string
	errors   []string
	sections []string
	saved    []string
}

func (d *recordingDisplay) Busy()                      { d.busy++ }
func (d *recordingDisplay) Message(level, text string) { d.messages = append(d.messages, level+":"+text) }
func (d *recordingDisplay) Section(title, body string) { d.sections = append(d.sections, title) }
func (d *recordingDisplay) Error(code, message, details string) {
	d.errors = append(d.errors, code)
}
func (d *recordingDisplay) Saved(path, mimeType string) { d.saved = append(d.saved, path+" "+mimeType) }

type memExporter struct {
	writes [][]byte
	err    error
}

func (e *memExporter) Write(data []byte) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	e.writes = append(e.writes, append([]byte(nil), data...))
	return "exports/customer_churn_prediction.csv", nil
}

// ==========================
// Test Helper Functions
// ==========================

type fixture struct {
	session   *Session
	collector *stubCollector
	clf       *countingClassifier
	display   *recordingDisplay
	exporter  *memExporter
	metrics   *metrics.Metrics
}

func newFixture(t *testing.T, label models.Label) *fixture {
	f := &fixture{
		collector: &stubCollector{values: models.ChurnSchema().Defaults()},
		clf:       &countingClassifier{label: label},
		display:   &recordingDisplay{},
		exporter:  &memExporter{},
		metrics:   metrics.New(prometheus.NewRegistry()),
	}
	log := logger.NewTestLogger(t)
	s, err := New(Options{
		Config:       &Config{ExportEnabled: true},
		Collector:    f.collector,
		Predictor:    predictchurn.NewHandler(predictchurn.HandlerOptions{Classifier: f.clf, Metrics: f.metrics, Logger: log}),
		Exporter:     f.exporter,
		Display:      f.display,
		Metrics:      f.metrics,
		Logger:       log,
		NewRequestID: func() string { return "req-fixed" },
	})
	require.NoError(t, err)
	f.session = s
	return f
}

func (f *fixture) stateGauge(state State) float64 {
	return testutil.ToFloat64(f.metrics.SessionState.WithLabelValues(string(state)))
}

// ==========================
// Scenario Tests
// ==========================

func TestSession_DefaultScenario(t *testing.T) {
	f := newFixture(t, models.LabelNoChurn)
	assert.Equal(t, StateIdle, f.session.State())

	out, err := f.session.RunOnce(context.Background())
	require.NoError(t, err)
	require.False(t, out.Failed())

	assert.Equal(t, 1, f.collector.calls)
	assert.Equal(t, 1, f.clf.calls)
	assert.Equal(t, []float64{100, 0, 5, 100, 50, 20, 5, 2, 0, 50, 25, 30, 15, 10, 5, 3, 5, 100}, f.clf.inputs[0])

	record := out.Presented.Record
	require.Len(t, record.Rows, models.FeatureCount)
	for i, label := range models.ChurnSchema().Labels() {
		assert.Equal(t, label, record.Rows[i].Feature)
	}
	assert.Equal(t, presentresult.PredictionUnlikely, record.Prediction)

	require.Len(t, f.exporter.writes, 1)
	assert.Equal(t, out.Presented.CSV, f.exporter.writes[0])
	assert.Equal(t, "exports/customer_churn_prediction.csv", out.ExportPath)

	assert.Equal(t, 1, f.display.busy)
	assert.Equal(t, []string{"success:" + presentresult.MessageUnlikely}, f.display.messages)
	assert.Equal(t, []string{"exports/customer_churn_prediction.csv text/csv"}, f.display.saved)

	assert.Equal(t, StatePresented, f.session.State())
	assert.Equal(t, 1.0, f.stateGauge(StatePresented))
	assert.Equal(t, 0.0, f.stateGauge(StatePredicting))
}

func TestSession_ExportMatchesLatestRequest(t *testing.T) {
	f := newFixture(t, models.LabelChurn)

	_, err := f.session.RunOnce(context.Background())
	require.NoError(t, err)

	f.collector.values["customer_service_calls"] = 9
	out, err := f.session.RunOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, f.exporter.writes, 2)
	parsed, err := presentresult.ParseExport(f.exporter.writes[1])
	require.NoError(t, err)
	assert.Equal(t, 9.0, parsed.Rows[7].Value)
	assert.Equal(t, out.Presented.Record, parsed)
	assert.Equal(t, presentresult.PredictionLikely, parsed.Prediction)
}

func TestSession_Deterministic(t *testing.T) {
	f := newFixture(t, models.LabelChurn)

	first, err := f.session.RunOnce(context.Background())
	require.NoError(t, err)
	second, err := f.session.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Presented.Message, second.Presented.Message)
	assert.Equal(t, first.Presented.CSV, second.Presented.CSV)
}

func TestSession_ModelUnavailable(t *testing.T) {
	coll := &stubCollector{values: models.ChurnSchema().Defaults()}
	exp := &memExporter{}

	for name, predictor := range map[string]*predictchurn.Handler{
		"no predictor":  nil,
		"no classifier": predictchurn.NewHandler(predictchurn.HandlerOptions{}),
	} {
		t.Run(name, func(t *testing.T) {
			s, err := New(Options{Collector: coll, Predictor: predictor, Exporter: exp})
			require.Error(t, err)
			assert.Nil(t, s)
			assert.Equal(t, apperrors.ErrCodeModelUnavailable, apperrors.CodeOf(err))
		})
	}
	assert.Equal(t, 0, coll.calls, "inputs must not be collected")
	assert.Empty(t, exp.writes, "no export without a classifier")
}

// ==========================
// Error Handling Tests
// ==========================

func TestSession_InferenceErrorReturnsToIdle(t *testing.T) {
	f := newFixture(t, models.LabelChurn)
	f.clf.err = errors.New("model exploded")

	out, err := f.session.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, out.Failed())
	assert.Equal(t, apperrors.ErrCodeInferenceError, out.Err.Code)
	assert.Nil(t, out.Presented)
	assert.Empty(t, f.exporter.writes)
	assert.Equal(t, []string{"INFERENCE_ERROR"}, f.display.errors)
	assert.Equal(t, StateIdle, f.session.State())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PredictionFailures.WithLabelValues("INFERENCE_ERROR")))

	// The operator can retry once the model behaves.
	f.clf.err = nil
	out, err = f.session.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, out.Failed())
	assert.Equal(t, StatePresented, f.session.State())
}

func TestSession_ClassifierPanicReturnsToIdle(t *testing.T) {
	calls := 0
	clf := classifier.Func(func(_ context.Context, v models.FeatureVector) (models.Label, error) {
		calls++
		if calls == 1 {
			var empty []int
			_ = empty[v.Len()]
		}
		return models.LabelChurn, nil
	})
	display := &recordingDisplay{}
	s, err := New(Options{
		Config:    &Config{},
		Predictor: predictchurn.NewHandler(predictchurn.HandlerOptions{Classifier: clf}),
		Display:   display,
	})
	require.NoError(t, err)

	out, err := s.Trigger(context.Background(), models.ChurnSchema().Defaults())
	require.NoError(t, err)
	require.True(t, out.Failed())
	assert.Equal(t, apperrors.ErrCodeInferenceError, out.Err.Code)
	assert.Equal(t, []string{"INFERENCE_ERROR"}, display.errors)
	assert.Equal(t, StateIdle, s.State())

	out, err = s.Trigger(context.Background(), models.ChurnSchema().Defaults())
	require.NoError(t, err)
	assert.False(t, out.Failed())
	assert.Equal(t, StatePresented, s.State())
}

func TestSession_SchemaMismatchIsPresented(t *testing.T) {
	f := newFixture(t, models.LabelChurn)
	delete(f.collector.values, "day_calls")

	out, err := f.session.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, out.Failed())
	assert.Equal(t, apperrors.ErrCodeSchemaMismatch, out.Err.Code)
	assert.Contains(t, out.Err.Details, "day_calls")
	assert.Equal(t, 0, f.clf.calls)
	assert.Equal(t, StateIdle, f.session.State())
}

func TestSession_ExportFailureKeepsResult(t *testing.T) {
	f := newFixture(t, models.LabelChurn)
	f.exporter.err = apperrors.NewExportFailedError("exports/x.csv", errors.New("disk full"))

	out, err := f.session.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, out.Failed())
	require.NotNil(t, out.ExportErr)
	assert.Equal(t, apperrors.ErrCodeExportFailed, out.ExportErr.Code)
	assert.NotNil(t, out.Presented)
	assert.Equal(t, StatePresented, f.session.State())
}

func TestSession_ExportDisabled(t *testing.T) {
	f := newFixture(t, models.LabelChurn)
	f.session.config.ExportEnabled = false

	out, err := f.session.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, f.exporter.writes)
	assert.Empty(t, out.ExportPath)
	assert.NotEmpty(t, out.Presented.CSV)
}

func TestSession_CollectorInterruptions(t *testing.T) {
	for _, cause := range []error{collector.ErrAborted, collector.ErrNotTriggered, context.Canceled} {
		t.Run(cause.Error(), func(t *testing.T) {
			f := newFixture(t, models.LabelChurn)
			f.collector.err = cause

			out, err := f.session.RunOnce(context.Background())
			assert.ErrorIs(t, err, cause)
			assert.Nil(t, out)
			assert.Equal(t, 0, f.clf.calls)
			assert.Equal(t, StateIdle, f.session.State())
		})
	}
}

func TestSession_InvalidProfileIsPresented(t *testing.T) {
	f := newFixture(t, models.LabelChurn)
	f.collector.err = apperrors.NewInputValidationFailedError("customer_service_calls: Must be less than or equal to 10")

	out, err := f.session.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, out.Failed())
	assert.Equal(t, apperrors.ErrCodeInputValidationFailed, out.Err.Code)
	assert.Equal(t, 0, f.clf.calls)
}

func TestSession_StateSequence(t *testing.T) {
	type step struct{ from, to State }
	var steps []step
	clf := &countingClassifier{label: models.LabelNoChurn}
	m := metrics.New(prometheus.NewRegistry())
	s, err := New(Options{
		Config:       &Config{},
		Predictor:    predictchurn.NewHandler(predictchurn.HandlerOptions{Classifier: clf}),
		Metrics:      m,
		OnTransition: func(from, to State) { steps = append(steps, step{from, to}) },
	})
	require.NoError(t, err)

	_, err = s.Trigger(context.Background(), models.ChurnSchema().Defaults())
	require.NoError(t, err)
	_, err = s.Trigger(context.Background(), models.ChurnSchema().Defaults())
	require.NoError(t, err)

	assert.Equal(t, []step{
		{StateIdle, StatePredicting},
		{StatePredicting, StatePresented},
		{StatePresented, StateIdle},
		{StateIdle, StatePredicting},
		{StatePredicting, StatePresented},
	}, steps)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionState.WithLabelValues(string(StatePresented))))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SessionState.WithLabelValues(string(StateIdle))))
}

// ==========================
// Concurrency Tests
// ==========================

func TestSession_RejectsSecondTriggerWhilePredicting(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	clf := classifier.Func(func(context.Context, models.FeatureVector) (models.Label, error) {
		close(entered)
		<-release
		return models.LabelNoChurn, nil
	})
	s, err := New(Options{
		Config:    &Config{},
		Predictor: predictchurn.NewHandler(predictchurn.HandlerOptions{Classifier: clf}),
	})
	require.NoError(t, err)

	done := make(chan *Outcome, 1)
	go func() {
		out, _ := s.Trigger(context.Background(), models.ChurnSchema().Defaults())
		done <- out
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("classifier was never invoked")
	}
	assert.Equal(t, StatePredicting, s.State())

	_, err = s.Trigger(context.Background(), models.ChurnSchema().Defaults())
	assert.ErrorIs(t, err, ErrPredictionInFlight)

	close(release)
	out := <-done
	require.NotNil(t, out)
	assert.False(t, out.Failed())
	assert.Equal(t, StatePresented, s.State())
}

func TestSession_AnalysisDelay(t *testing.T) {
	f := newFixture(t, models.LabelChurn)
	f.session.config.AnalysisDelay = 30 * time.Millisecond

	start := time.Now()
	_, err := f.session.RunOnce(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.True(t, strings.HasPrefix(f.display.messages[0], "alert:"))
}
