package models_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AIConnect-rgb/aiconnct/models"
)

func validResult() models.AnalysisResult {
	return models.AnalysisResult{
		SummaryMetrics: models.SummaryMetrics{
			TotalProcessed:       1,
			HighValueIdeasCount:  1,
			PredominantSentiment: models.SentimentEnthusiastic,
		},
		TopInsights: []models.Insight{{
			UserID:          "user_123",
			OriginalComment: "We should use solar panels on bus stops",
			Summary:         "Solar powered bus stops",
			InnovationScore: 8,
			IPFlag:          true,
		}},
		AutomatedResponseSample: "What inspired this idea?",
		Lang:                    "en",
	}
}

func TestAnalysisResultValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(r *models.AnalysisResult)
		wantKind models.ErrorKind
	}{
		{
			name:   "valid result",
			mutate: func(r *models.AnalysisResult) {},
		},
		{
			name: "unknown sentiment",
			mutate: func(r *models.AnalysisResult) {
				r.SummaryMetrics.PredominantSentiment = "ecstatic"
			},
			wantKind: models.KindFormat,
		},
		{
			name: "innovation score too low",
			mutate: func(r *models.AnalysisResult) {
				r.TopInsights[0].InnovationScore = 0
			},
			wantKind: models.KindFormat,
		},
		{
			name: "innovation score too high",
			mutate: func(r *models.AnalysisResult) {
				r.TopInsights[0].InnovationScore = 11
			},
			wantKind: models.KindFormat,
		},
		{
			name: "lang not a two-letter code",
			mutate: func(r *models.AnalysisResult) {
				r.Lang = "eng"
			},
			wantKind: models.KindFormat,
		},
		{
			name: "no insights is fine",
			mutate: func(r *models.AnalysisResult) {
				r.TopInsights = nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validResult()
			tt.mutate(&result)

			err := result.Validate()
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}

			var analysisErr *models.AnalysisError
			assert.ErrorAs(t, err, &analysisErr)
			assert.Equal(t, tt.wantKind, analysisErr.Kind)
		})
	}
}

func TestSentimentValid(t *testing.T) {
	for _, sentiment := range models.Sentiments() {
		assert.True(t, sentiment.Valid(), string(sentiment))
	}
	assert.False(t, models.Sentiment("").Valid())
	assert.False(t, models.Sentiment("Angry").Valid())
}

func TestAsAnalysisError(t *testing.T) {
	classified := &models.AnalysisError{
		Kind:    models.KindSafetyRejected,
		Message: "blocked",
	}
	assert.Same(t, classified, models.AsAnalysisError(classified))

	wrapped := models.AsAnalysisError(errors.New("boom"))
	assert.Equal(t, models.KindUnknown, wrapped.Kind)
	assert.ErrorContains(t, wrapped, "boom")
}
