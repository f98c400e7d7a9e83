package feed_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AIConnect-rgb/aiconnct/feed"
	"github.com/AIConnect-rgb/aiconnct/models"
)

var testIdentity = feed.Identity{
	Author:    "You",
	Handle:    "@citizen",
	AvatarURL: "https://example.com/avatar.png",
}

// stubAnalyzer lets tests control when and how an analysis settles. A nil
// release channel settles immediately.
type stubAnalyzer struct {
	release chan struct{}
	result  *models.AnalysisResult
	err     error
	panics  bool

	mu    sync.Mutex
	calls int
}

func (s *stubAnalyzer) Analyze(ctx context.Context, text string) (*models.AnalysisResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.release != nil {
		<-s.release
	}
	if s.panics {
		panic("analyzer exploded")
	}
	return s.result, s.err
}

func analysisFor(text string) *models.AnalysisResult {
	return &models.AnalysisResult{
		SummaryMetrics: models.SummaryMetrics{
			TotalProcessed:       1,
			HighValueIdeasCount:  1,
			PredominantSentiment: models.SentimentEnthusiastic,
		},
		TopInsights: []models.Insight{{
			UserID:          "user_123",
			OriginalComment: text,
			Summary:         "An idea",
			InnovationScore: 6,
		}},
		AutomatedResponseSample: "What inspired this idea?",
		Lang:                    "en",
	}
}

func TestSubmitSettlesWithAnalysis(t *testing.T) {
	f := feed.New()
	analyzer := &stubAnalyzer{result: analysisFor("Solar bus stops")}
	o := feed.NewOrchestrator(f, analyzer, testIdentity)

	pending, ok := o.Submit(context.Background(), "  Solar bus stops  ")
	assert.True(t, ok)
	assert.True(t, pending.IsAnalyzing)
	assert.True(t, strings.HasPrefix(pending.ID, "temp_"))
	assert.Equal(t, "Solar bus stops", pending.Text)
	assert.Equal(t, "You", pending.Author)

	// The pending post is visible at the head immediately
	assert.Equal(t, 1, f.Len())

	assert.Eventually(t, func() bool {
		posts := f.Posts()
		return len(posts) == 1 && posts[0].Analysis != nil
	}, time.Second, 10*time.Millisecond)

	settled := f.Posts()[0]
	assert.True(t, strings.HasPrefix(settled.ID, "post_"))
	assert.NotEqual(t, pending.ID, settled.ID)
	assert.False(t, settled.IsAnalyzing)
	assert.Equal(t, pending.Text, settled.Text)
	assert.Equal(t, pending.CreatedAt, settled.CreatedAt)
}

func TestSubmitRollsBackOnFailure(t *testing.T) {
	f := feed.New()
	analyzer := &stubAnalyzer{err: &models.AnalysisError{
		Kind:    models.KindSafetyRejected,
		Message: "blocked",
	}}
	o := feed.NewOrchestrator(f, analyzer, testIdentity)

	_, ok := o.Submit(context.Background(), "Something provocative")
	assert.True(t, ok)

	select {
	case analysisErr := <-o.Errors():
		assert.Equal(t, models.KindSafetyRejected, analysisErr.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected an analysis error")
	}

	assert.Eventually(t, func() bool {
		return f.Len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestSubmitRollsBackOnPanic(t *testing.T) {
	f := feed.New()
	analyzer := &stubAnalyzer{panics: true}
	o := feed.NewOrchestrator(f, analyzer, testIdentity)

	_, ok := o.Submit(context.Background(), "Boom")
	assert.True(t, ok)

	select {
	case analysisErr := <-o.Errors():
		assert.Equal(t, models.KindUnknown, analysisErr.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected an analysis error")
	}

	assert.Eventually(t, func() bool {
		return f.Len() == 0
	}, time.Second, 10*time.Millisecond)

	// The in-flight flag clears after the rollback, so a new submission
	// goes through
	analyzer.panics = false
	analyzer.result = analysisFor("Again")
	assert.Eventually(t, func() bool {
		_, ok := o.Submit(context.Background(), "Again")
		return ok
	}, time.Second, 10*time.Millisecond)
}

func TestSubmitSingleFlight(t *testing.T) {
	f := feed.New()
	analyzer := &stubAnalyzer{
		release: make(chan struct{}),
		result:  analysisFor("First"),
	}
	o := feed.NewOrchestrator(f, analyzer, testIdentity)

	_, ok := o.Submit(context.Background(), "First")
	assert.True(t, ok)

	// A second submission while the first is in flight is refused and
	// leaves the feed untouched
	_, ok = o.Submit(context.Background(), "Second")
	assert.False(t, ok)
	assert.Equal(t, 1, f.Len())

	// A closed release channel lets this and later analyses through
	close(analyzer.release)

	assert.Eventually(t, func() bool {
		posts := f.Posts()
		return len(posts) == 1 && posts[0].Analysis != nil
	}, time.Second, 10*time.Millisecond)

	// Once settled the orchestrator accepts submissions again
	assert.Eventually(t, func() bool {
		_, ok := o.Submit(context.Background(), "Third")
		return ok
	}, time.Second, 10*time.Millisecond)
}

func TestSubmitRejectsBlankText(t *testing.T) {
	f := feed.New()
	analyzer := &stubAnalyzer{result: analysisFor("unused")}
	o := feed.NewOrchestrator(f, analyzer, testIdentity)

	_, ok := o.Submit(context.Background(), "   \n\t  ")
	assert.False(t, ok)
	assert.Equal(t, 0, f.Len())

	analyzer.mu.Lock()
	defer analyzer.mu.Unlock()
	assert.Equal(t, 0, analyzer.calls)
}

func TestSettleKeepsSlotUnderNewerInserts(t *testing.T) {
	f := feed.New()
	analyzer := &stubAnalyzer{
		release: make(chan struct{}),
		result:  analysisFor("Slow idea"),
	}
	o := feed.NewOrchestrator(f, analyzer, testIdentity)

	pending, ok := o.Submit(context.Background(), "Slow idea")
	assert.True(t, ok)

	// Another post lands at the head before the first one settles
	f.InsertHead(models.Post{ID: "post_newer", Text: "Newer"})

	close(analyzer.release)

	assert.Eventually(t, func() bool {
		posts := f.Posts()
		return len(posts) == 2 && posts[1].Analysis != nil
	}, time.Second, 10*time.Millisecond)

	posts := f.Posts()
	assert.Equal(t, "post_newer", posts[0].ID)
	assert.Equal(t, pending.Text, posts[1].Text)
}
