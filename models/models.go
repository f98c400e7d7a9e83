package models

import "time"

// Post model with the user submitted text and its analysis
type Post struct {
	ID          string          `json:"id"`
	Author      string          `json:"author"`
	Handle      string          `json:"handle"`
	AvatarURL   string          `json:"avatarUrl"`
	CreatedAt   time.Time       `json:"createdAt"`
	Text        string          `json:"text"`
	Analysis    *AnalysisResult `json:"analysis,omitempty"`
	IsAnalyzing bool            `json:"isAnalyzing"`
}

// SummaryMetrics is the glanceable part of an analysis
type SummaryMetrics struct {
	TotalProcessed       int       `json:"total_processed"`
	HighValueIdeasCount  int       `json:"high_value_ideas_count"`
	PredominantSentiment Sentiment `json:"predominant_sentiment"`
}

// Insight is one extracted idea or feedback item within an analysis
type Insight struct {
	UserID          string `json:"user_id"`
	OriginalComment string `json:"original_comment"`
	Summary         string `json:"summary"`
	InnovationScore int    `json:"innovation_score"`
	IPFlag          bool   `json:"ip_flag"`
}

// AnalysisResult is immutable once attached to a post
type AnalysisResult struct {
	SummaryMetrics          SummaryMetrics `json:"summary_metrics"`
	TopInsights             []Insight      `json:"top_insights"`
	AutomatedResponseSample string         `json:"automated_response_sample"`
	Lang                    string         `json:"lang"`
}

// Validate checks the constraints the provider schema must honor.
// A violation surfaces to callers as a format error.
func (r *AnalysisResult) Validate() error {
	if !r.SummaryMetrics.PredominantSentiment.Valid() {
		return &AnalysisError{
			Kind:    KindFormat,
			Message: "unknown sentiment value: " + string(r.SummaryMetrics.PredominantSentiment),
		}
	}
	for _, insight := range r.TopInsights {
		if insight.InnovationScore < 1 || insight.InnovationScore > 10 {
			return &AnalysisError{
				Kind:    KindFormat,
				Message: "innovation score out of range",
			}
		}
	}
	if len(r.Lang) != 2 {
		return &AnalysisError{
			Kind:    KindFormat,
			Message: "lang is not a two-letter code: " + r.Lang,
		}
	}
	return nil
}

type ChatAuthor string

const (
	ChatAuthorUser ChatAuthor = "user"
	ChatAuthorAI   ChatAuthor = "ai"
)

// ChatMessage is append only, never mutated or deleted.
// ReplyingToText is a detached snapshot of the quoted text taken at send
// time, not a live reference to another message.
type ChatMessage struct {
	ID             string     `json:"id"`
	Author         ChatAuthor `json:"author"`
	Text           string     `json:"text"`
	ReplyingToText string     `json:"replyingToText,omitempty"`
}

// CreatePostEvent fired when a pending post is inserted at the feed head
type CreatePostEvent struct {
	Post Post
}

// UpdatePostEvent fired when a pending post settles with its analysis
type UpdatePostEvent struct {
	Post Post
}

// DeletePostEvent fired when a pending post is rolled back
type DeletePostEvent struct {
	Post Post
}
