// internal/common/errors/handler.go
package errors

// Logger is the slice of logger.Logger the reporter needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorReporter turns pipeline failures into presentable StandardErrors.
type ErrorReporter struct {
	logger Logger
}

func NewErrorReporter(logger Logger) *ErrorReporter {
	return &ErrorReporter{logger: logger}
}

// Report logs err against the request and returns its normalized form.
// Nothing is swallowed: the caller always gets a non-nil error back for a
// non-nil input.
func (h *ErrorReporter) Report(requestID string, err error) *StandardError {
	if err == nil {
		return nil
	}
	stdErr := Normalize(err)
	h.logger.Error("prediction request failed", map[string]interface{}{
		"requestId":     requestID,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"fatal":         IsFatal(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
	})
	return stdErr
}
