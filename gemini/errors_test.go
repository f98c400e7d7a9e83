package gemini_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AIConnect-rgb/aiconnct/gemini"
	"github.com/AIConnect-rgb/aiconnct/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected models.ErrorKind
	}{
		{
			name:     "missing api key",
			err:      errors.New("Error 400: API key not valid. Please pass a valid API key."),
			expected: models.KindConfiguration,
		},
		{
			name:     "unauthenticated",
			err:      errors.New("rpc error: code = Unauthenticated desc = request had invalid credentials"),
			expected: models.KindConfiguration,
		},
		{
			name:     "permission denied",
			err:      errors.New("Error 403: permission denied"),
			expected: models.KindConfiguration,
		},
		{
			name:     "safety block",
			err:      errors.New("candidate was blocked due to SAFETY"),
			expected: models.KindSafetyRejected,
		},
		{
			name:     "prohibited content",
			err:      errors.New("blocked reason: PROHIBITED_CONTENT"),
			expected: models.KindSafetyRejected,
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp 142.250.74.74:443: connection refused"),
			expected: models.KindConnectivity,
		},
		{
			name:     "dns failure",
			err:      errors.New("lookup generativelanguage.googleapis.com: no such host"),
			expected: models.KindConnectivity,
		},
		{
			name:     "rate limited",
			err:      errors.New("Error 429: Resource has been exhausted"),
			expected: models.KindConnectivity,
		},
		{
			name:     "service unavailable",
			err:      errors.New("Error 503: The service is currently unavailable"),
			expected: models.KindConnectivity,
		},
		{
			name:     "context deadline",
			err:      fmt.Errorf("generate content: %w", context.DeadlineExceeded),
			expected: models.KindConnectivity,
		},
		{
			name:     "anything else",
			err:      errors.New("something odd happened"),
			expected: models.KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := gemini.Classify(tt.err)
			assert.Equal(t, tt.expected, classified.Kind)
		})
	}
}

func TestClassifyKeepsClassifiedErrors(t *testing.T) {
	original := &models.AnalysisError{
		Kind:    models.KindEmptyResponse,
		Message: "the AI returned an empty reply",
	}

	classified := gemini.Classify(fmt.Errorf("send failed: %w", original))
	assert.Equal(t, models.KindEmptyResponse, classified.Kind)
}
