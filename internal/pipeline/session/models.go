// internal/pipeline/session/models.go
package session

import (
	apperrors "churn-predictor/internal/common/errors"
	presentresult "churn-predictor/internal/pipeline/present-result"
)

// State is where the session sits in Idle -> Predicting -> Presented -> Idle.
// A presented result is left for Idle when the next trigger arrives; any
// failure while Predicting goes straight back to Idle.
type State string

const (
	StateIdle       State = "idle"
	StatePredicting State = "predicting"
	StatePresented  State = "presented"
)

// Outcome is what one trigger produced. Exactly one of Presented and Err
// is set; ExportErr may accompany a successful presentation.
type Outcome struct {
	RequestID  string                   `json:"requestId"`
	Presented  *presentresult.Output    `json:"presented,omitempty"`
	Err        *apperrors.StandardError `json:"error,omitempty"`
	ExportPath string                   `json:"exportPath,omitempty"`
	ExportErr  *apperrors.StandardError `json:"exportError,omitempty"`
}

// Failed reports whether the request ended in a presented error.
func (o *Outcome) Failed() bool { return o != nil && o.Err != nil }
