package feed

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/AIConnect-rgb/aiconnct/models"
)

var (
	analysesSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aiconnect_analyses_settled_total",
		Help: "Number of submissions settled with an analysis",
	})
	analysesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aiconnect_analyses_rejected_total",
		Help: "Number of submissions rolled back, by error kind",
	}, []string{"kind"})
)

// Analyzer is the provider side of the analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*models.AnalysisResult, error)
}

// Identity describes the author attached to submitted posts.
type Identity struct {
	Author    string
	Handle    string
	AvatarURL string
}

// Orchestrator owns the submit, analyze, settle lifecycle for new posts.
// At most one submission is in flight per orchestrator; a second Submit
// while one is pending is a no-op.
type Orchestrator struct {
	feed     *Feed
	analyzer Analyzer
	identity Identity

	mu       sync.Mutex
	inFlight bool

	errs chan *models.AnalysisError
}

func NewOrchestrator(feed *Feed, analyzer Analyzer, identity Identity) *Orchestrator {
	return &Orchestrator{
		feed:     feed,
		analyzer: analyzer,
		identity: identity,
		errs:     make(chan *models.AnalysisError, 16),
	}
}

// Errors returns the channel classified submission failures are reported on.
func (o *Orchestrator) Errors() <-chan *models.AnalysisError {
	return o.errs
}

// Submit inserts a pending post at the feed head and settles it
// asynchronously: the pending post is either replaced by a finalized post
// carrying the analysis, or removed entirely on failure. Returns false
// without touching the feed when the text is blank after trimming or when
// another submission is already in flight.
func (o *Orchestrator) Submit(ctx context.Context, text string) (models.Post, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Post{}, false
	}

	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return models.Post{}, false
	}
	o.inFlight = true
	o.mu.Unlock()

	pending := models.Post{
		ID:          "temp_" + uuid.NewString(),
		Author:      o.identity.Author,
		Handle:      o.identity.Handle,
		AvatarURL:   o.identity.AvatarURL,
		CreatedAt:   time.Now(),
		Text:        text,
		IsAnalyzing: true,
	}
	o.feed.InsertHead(pending)

	go o.settle(ctx, pending)

	return pending, true
}

func (o *Orchestrator) settle(ctx context.Context, pending models.Post) {
	// The in-flight flag must clear on every outcome, a panicking
	// analyzer included.
	defer func() {
		if r := recover(); r != nil {
			o.rollback(pending, &models.AnalysisError{
				Kind:    models.KindUnknown,
				Message: "unexpected analysis failure",
				Err:     fmt.Errorf("analyzer panic: %v", r),
			})
		}
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
	}()

	result, err := o.analyzer.Analyze(ctx, pending.Text)
	if err != nil {
		o.rollback(pending, models.AsAnalysisError(err))
		return
	}

	final := pending
	final.ID = "post_" + uuid.NewString()
	final.Analysis = result
	final.IsAnalyzing = false

	if !o.feed.ReplaceByID(pending.ID, final) {
		log.WithFields(log.Fields{
			"id": pending.ID,
		}).Warn("Pending post vanished before settling")
		return
	}

	analysesSettled.Inc()
	log.WithFields(log.Fields{
		"id":        final.ID,
		"lang":      result.Lang,
		"sentiment": result.SummaryMetrics.PredominantSentiment,
	}).Info("Post analyzed")
}

func (o *Orchestrator) rollback(pending models.Post, analysisErr *models.AnalysisError) {
	o.feed.RemoveByID(pending.ID)
	analysesRejected.WithLabelValues(string(analysisErr.Kind)).Inc()

	log.WithFields(log.Fields{
		"id":   pending.ID,
		"kind": analysisErr.Kind,
	}).Warn("Submission rolled back")

	select {
	case o.errs <- analysisErr: // Non-blocking send
	default:
		log.Warn("Error channel full, dropping analysis error")
	}
}
