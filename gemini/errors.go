package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/AIConnect-rgb/aiconnct/models"
)

// Classify maps whatever the Gemini SDK raised to one of the stable error
// kinds. The SDK does not expose typed errors for every failure mode, so
// this falls back to matching on the error text.
func Classify(err error) *models.AnalysisError {
	if err == nil {
		return nil
	}

	var classified *models.AnalysisError
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &models.AnalysisError{
			Kind:    models.KindConnectivity,
			Message: "could not reach the analysis service",
			Err:     err,
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "api key", "api_key", "unauthenticated", "unauthorized", "permission denied", "invalid_argument", "400", "401", "403"):
		return &models.AnalysisError{
			Kind:    models.KindConfiguration,
			Message: "there is an issue with the analysis service configuration",
			Err:     err,
		}
	case containsAny(msg, "safety", "blocked", "prohibited_content"):
		return &models.AnalysisError{
			Kind:    models.KindSafetyRejected,
			Message: "the request was blocked by content moderation",
			Err:     err,
		}
	case containsAny(msg, "connection refused", "connection reset", "no such host", "dial tcp", "timeout", "deadline exceeded", "unavailable", "429", "rate limit", "exhausted", "502", "503", "504"):
		return &models.AnalysisError{
			Kind:    models.KindConnectivity,
			Message: "could not reach the analysis service",
			Err:     err,
		}
	}

	return &models.AnalysisError{
		Kind:    models.KindUnknown,
		Message: "unexpected analysis failure",
		Err:     err,
	}
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
