package scribe

import (
	"errors"
	"fmt"
)

// Messages returned to API callers. Causes are logged, never returned.
const (
	MsgTranscriptRequired = "Transcript is required"
	MsgGenerateFailed     = "Failed to generate SOAP note"
	MsgHistoryFailed      = "Failed to fetch history"
)

// ValidationError reports input rejected before any generation is attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// UpstreamError reports a failure of the note generator.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// PersistenceError reports a failure of the history store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Op returns the failed operation name of a typed error, or "unknown".
func Op(err error) string {
	var up *UpstreamError
	if errors.As(err, &up) {
		return up.Op
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe.Op
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "validate"
	}
	return "unknown"
}
