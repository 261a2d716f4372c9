// Package errors provides the standardized error taxonomy of the prediction pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeSchemaMismatch        ErrorCode = "SCHEMA_MISMATCH"
	ErrCodeModelUnavailable      ErrorCode = "MODEL_UNAVAILABLE"
	ErrCodeInferenceError        ErrorCode = "INFERENCE_ERROR"
	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"
	ErrCodeExportFailed          ErrorCode = "EXPORT_FAILED"
	ErrCodeProfileLoadFailed     ErrorCode = "PROFILE_LOAD_FAILED"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error { return e.cause }

// ==========================
// 2. Error Constructors
// ==========================

// NewSchemaMismatchError reports an input set that does not match the
// feature schema. Missing and extra field names are listed sorted.
func NewSchemaMismatchError(missing, extra []string, cause error) *StandardError {
	missing = sortedCopy(missing)
	extra = sortedCopy(extra)
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		parts = append(parts, "unexpected: "+strings.Join(extra, ", "))
	}
	return &StandardError{
		Code:      ErrCodeSchemaMismatch,
		Message:   "Input set does not match feature schema",
		Details:   strings.Join(parts, "; "),
		Retryable: false,
		Metadata: map[string]interface{}{
			"missing": missing,
			"extra":   extra,
		},
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewModelUnavailableError reports a classifier that could not be loaded.
func NewModelUnavailableError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelUnavailable,
		Message:   "Classifier could not be loaded",
		Details:   fmt.Sprintf("path: %s, error: %v", path, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInferenceError reports a failed classifier invocation.
func NewInferenceError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInferenceError,
		Message:   "Prediction failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInputValidationFailedError reports values outside their field domain.
func NewInputValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputValidationFailed,
		Message:   "Input values failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExportFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExportFailed,
		Message:   "Export record could not be written",
		Details:   fmt.Sprintf("path: %s, error: %v", path, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewProfileLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileLoadFailed,
		Message:   "Customer profile could not be loaded",
		Details:   fmt.Sprintf("path: %s, error: %v", path, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// CodeOf returns the code of err, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return Normalize(err).Code
}

// IsFatal reports whether the process cannot serve any prediction after
// this error.
func IsFatal(code ErrorCode) bool {
	return code == ErrCodeModelUnavailable
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeSchemaMismatch:
		return "INTEGRATION"
	case ErrCodeModelUnavailable, ErrCodeInferenceError:
		return "MODEL"
	case ErrCodeInputValidationFailed, ErrCodeProfileLoadFailed:
		return "INPUT"
	case ErrCodeExportFailed:
		return "EXPORT"
	default:
		return "OTHER"
	}
}

func sortedCopy(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
