package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/labstack/gommon/log"
	"google.golang.org/genai"

	"github.com/AIConnect-rgb/aiconnct/chat"
	"github.com/AIConnect-rgb/aiconnct/models"
)

const DefaultModel = "gemini-2.5-flash"

// Client wraps the Gemini API for content analysis, per-post chat and
// text correction.
type Client struct {
	ai    *genai.Client
	model string
}

// NewClient creates a Gemini client. Reads GEMINI_API_KEY from the
// environment when no key is given.
func NewClient(ctx context.Context, apiKey string, model string) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if model == "" {
		model = DefaultModel
	}

	ai, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{ai: ai, model: model}, nil
}

// Analyze sends the literal submitted text to Gemini for structured
// analysis. Connectivity failures are retried with exponential backoff
// before giving up; every other failure is returned classified on the
// first attempt.
func (c *Client) Analyze(ctx context.Context, text string) (*models.AnalysisResult, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: analysisSystemInstruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    analysisSchema(),
		Temperature:       genai.Ptr[float32](0.5),
	}

	var response *genai.GenerateContentResponse
	operation := func() error {
		resp, err := c.ai.Models.GenerateContent(ctx, c.model, genai.Text(text), config)
		if err != nil {
			if Classify(err).Kind == models.KindConnectivity {
				return err
			}
			return backoff.Permanent(err)
		}
		response = resp
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 20 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		log.Errorf("analysis request failed: %s", err)
		return nil, Classify(err)
	}

	return decodeAnalysis(responseText(response))
}

// StartChat opens a provider side conversation seeded with the synthesized
// first message as a prior model turn.
func (c *Client) StartChat(ctx context.Context, seed string) (chat.Session, error) {
	history := []*genai.Content{
		{Role: genai.RoleModel, Parts: []*genai.Part{{Text: seed}}},
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: chatSystemInstruction}}},
	}

	session, err := c.ai.Chats.Create(ctx, c.model, config, history)
	if err != nil {
		return nil, Classify(err)
	}
	return &chatSession{chat: session}, nil
}

type chatSession struct {
	chat *genai.Chat
}

func (s *chatSession) Send(ctx context.Context, text string) (string, error) {
	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", Classify(err)
	}

	reply := strings.TrimSpace(responseText(resp))
	if reply == "" {
		return "", &models.AnalysisError{
			Kind:    models.KindEmptyResponse,
			Message: "the AI returned an empty reply",
		}
	}
	return reply, nil
}

// Correct asks Gemini to fix spelling and grammar. It never fails: any
// error is logged and the original text returned unchanged.
func (c *Client) Correct(ctx context.Context, text string, langTag string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	config := &genai.GenerateContentConfig{
		Temperature:    genai.Ptr[float32](0.2),
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	}

	resp, err := c.ai.Models.GenerateContent(ctx, c.model, genai.Text(correctionPrompt(text, langTag)), config)
	if err != nil {
		log.Errorf("text correction failed: %s", err)
		return text
	}

	corrected := strings.TrimSpace(responseText(resp))
	if corrected == "" {
		return text
	}
	return corrected
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// decodeAnalysis parses the structured payload and enforces the response
// schema, mapping each failure mode to its stable error kind.
func decodeAnalysis(raw string) (*models.AnalysisResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &models.AnalysisError{
			Kind:    models.KindEmptyResponse,
			Message: "the analysis service returned an empty response",
		}
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, &models.AnalysisError{
			Kind:    models.KindFormat,
			Message: "the analysis response was not in the expected format",
			Err:     err,
		}
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}

	return &result, nil
}
