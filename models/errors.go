package models

import "errors"

// ErrorKind is the stable classification of an analysis failure.
type ErrorKind string

const (
	KindConfiguration  ErrorKind = "configuration"
	KindSafetyRejected ErrorKind = "safety_rejected"
	KindConnectivity   ErrorKind = "connectivity"
	KindEmptyResponse  ErrorKind = "empty_response"
	KindFormat         ErrorKind = "format"
	KindUnknown        ErrorKind = "unknown"
)

// AnalysisError carries a classified provider failure. The Message is safe
// to show to users; Err holds the underlying cause, if any.
type AnalysisError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// AsAnalysisError returns the classified error inside err, or wraps err as
// an unknown failure so callers always receive a stable kind.
func AsAnalysisError(err error) *AnalysisError {
	var analysisErr *AnalysisError
	if errors.As(err, &analysisErr) {
		return analysisErr
	}
	return &AnalysisError{
		Kind:    KindUnknown,
		Message: "unexpected analysis failure",
		Err:     err,
	}
}
