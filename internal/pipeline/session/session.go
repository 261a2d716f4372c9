// internal/pipeline/session/session.go
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"churn-predictor/internal/collector"
	apperrors "churn-predictor/internal/common/errors"
	"churn-predictor/internal/common/logger"
	"churn-predictor/internal/common/metrics"
	buildfeaturevector "churn-predictor/internal/pipeline/build-feature-vector"
	predictchurn "churn-predictor/internal/pipeline/predict-churn"
	presentresult "churn-predictor/internal/pipeline/present-result"
)

// ErrPredictionInFlight rejects a trigger while the session is Predicting.
var ErrPredictionInFlight = errors.New("session: a prediction is already in flight")

// Display is the part of the console the session drives.
type Display interface {
	Busy()
	Message(level, text string)
	Section(title, body string)
	Error(code, message, details string)
	Saved(path, mimeType string)
}

// Exporter stores the export artifact and returns where it went.
type Exporter interface {
	Write(data []byte) (string, error)
}

type Options struct {
	Config    *Config
	Collector collector.Collector
	Builder   *buildfeaturevector.Handler
	Predictor *predictchurn.Handler
	Presenter *presentresult.Handler
	Exporter  Exporter
	Display   Display
	Metrics   *metrics.Metrics
	Logger    logger.Logger
	// NewRequestID defaults to uuid.NewString.
	NewRequestID func() string
	// OnTransition, if set, sees every state change. It runs under the
	// session lock and must not call back into the session.
	OnTransition func(from, to State)
}

// Session runs one prediction at a time for one operator.
type Session struct {
	config    *Config
	collector collector.Collector
	builder   *buildfeaturevector.Handler
	predictor *predictchurn.Handler
	presenter *presentresult.Handler
	exporter  Exporter
	display   Display
	metrics   *metrics.Metrics
	reporter  *apperrors.ErrorReporter
	logger    logger.Logger
	newID     func() string

	mu           sync.Mutex
	state        State
	onTransition func(from, to State)
}

// New wires a session. Without a loaded classifier it fails with
// MODEL_UNAVAILABLE before anything is collected.
func New(opts Options) (*Session, error) {
	if opts.Predictor == nil || !opts.Predictor.Ready() {
		return nil, apperrors.NewModelUnavailableError("", predictchurn.ErrNoClassifier)
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = LoadConfig(nil)
	}
	builder := opts.Builder
	if builder == nil {
		builder = buildfeaturevector.NewHandler(nil, log)
	}
	presenter := opts.Presenter
	if presenter == nil {
		presenter = presentresult.NewHandler(nil, log)
	}
	newID := opts.NewRequestID
	if newID == nil {
		newID = uuid.NewString
	}

	s := &Session{
		config:    cfg,
		collector: opts.Collector,
		builder:   builder,
		predictor: opts.Predictor,
		presenter: presenter,
		exporter:  opts.Exporter,
		display:   opts.Display,
		metrics:   opts.Metrics,
		reporter:  apperrors.NewErrorReporter(log),
		logger:    log.WithFields(map[string]interface{}{"stage": "session"}),
		newID:     newID,
		state:     StateIdle,

		onTransition: opts.OnTransition,
	}
	s.metrics.SetState(string(StateIdle))
	return s, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RunOnce collects one set of inputs and triggers a prediction on them.
// Collector interruptions (abort, declined trigger, cancelled context) come
// back as errors; every pipeline failure is presented and returned in the
// Outcome instead.
func (s *Session) RunOnce(ctx context.Context) (*Outcome, error) {
	if s.collector == nil {
		return nil, errors.New("session: no collector")
	}
	values, err := s.collector.Collect(ctx)
	if err != nil {
		if errors.Is(err, collector.ErrAborted) || errors.Is(err, collector.ErrNotTriggered) ||
			errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		// Input errors are scoped to this request, like pipeline errors.
		id := s.newID()
		return s.fail(id, err), nil
	}
	return s.Trigger(ctx, values)
}

// Trigger runs Predicting -> Presented for already collected values. It
// blocks until the classifier returns; there is no cancellation.
func (s *Session) Trigger(ctx context.Context, values map[string]float64) (*Outcome, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	id := s.newID()
	log := s.logger.WithFields(map[string]interface{}{"requestId": id})
	log.Info("prediction triggered", nil)

	if s.display != nil {
		s.display.Busy()
	}
	s.wait(ctx)

	built, err := s.builder.Execute(ctx, &buildfeaturevector.Input{RequestID: id, Values: values})
	if err != nil {
		return s.fail(id, err), nil
	}
	predicted, err := s.predictor.Execute(ctx, &predictchurn.Input{
		RequestID: id,
		Vector:    built.Vector,
		Names:     built.Names,
	})
	if err != nil {
		return s.fail(id, err), nil
	}
	presented, err := s.presenter.Execute(ctx, &presentresult.Input{Result: predicted.Result})
	if err != nil {
		return s.fail(id, err), nil
	}

	out := &Outcome{RequestID: id, Presented: presented}
	if s.display != nil {
		s.display.Message(string(presented.Message.Level), presented.Message.Text)
		s.display.Section("📊 Customer Data Visualization", presented.Chart)
	}
	if s.config.ExportEnabled && s.exporter != nil {
		path, err := s.exporter.Write(presented.CSV)
		if err != nil {
			// The verdict stands; only the download is lost.
			out.ExportErr = s.reporter.Report(id, err)
			s.metrics.ObserveFailure(string(out.ExportErr.Code))
			if s.display != nil {
				s.display.Error(string(out.ExportErr.Code), out.ExportErr.Message, out.ExportErr.Details)
			}
		} else {
			out.ExportPath = path
			if s.display != nil {
				s.display.Saved(path, presented.MimeType)
			}
		}
	}

	s.setState(StatePresented)
	log.Info("prediction presented", map[string]interface{}{"label": predicted.Result.Label.String()})
	return out, nil
}

// begin leaves a presented result behind (Presented -> Idle) and enters
// Predicting.
func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePredicting {
		return ErrPredictionInFlight
	}
	if s.state == StatePresented {
		s.transition(StateIdle)
	}
	s.transition(StatePredicting)
	return nil
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transition(state)
}

// transition must be called with mu held.
func (s *Session) transition(state State) {
	from := s.state
	s.state = state
	s.metrics.SetState(string(state))
	s.logger.Debug("session state changed", map[string]interface{}{"from": string(from), "to": string(state)})
	if s.onTransition != nil {
		s.onTransition(from, state)
	}
}

// fail presents err and returns the session to Idle.
func (s *Session) fail(id string, err error) *Outcome {
	stdErr := s.reporter.Report(id, err)
	// Inference failures are already counted by the predictor.
	if stdErr.Code != apperrors.ErrCodeInferenceError {
		s.metrics.ObserveFailure(string(stdErr.Code))
	}
	if s.display != nil {
		s.display.Error(string(stdErr.Code), stdErr.Message, stdErr.Details)
	}
	s.setState(StateIdle)
	return &Outcome{RequestID: id, Err: stdErr}
}

// wait keeps the busy indicator up for the configured analysis delay.
func (s *Session) wait(ctx context.Context) {
	if s.config.AnalysisDelay <= 0 {
		return
	}
	t := time.NewTimer(s.config.AnalysisDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
