package gemini

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/AIConnect-rgb/aiconnct/models"
)

const analysisSystemInstruction = `Role:
You are the AI Connect (AC) Intelligence Engine, a sophisticated mediator between the global public and high-profile entities (CEOs, Celebrities, Government Officials). Your mission is to facilitate "Digital Democracy" by bridging the communication gap.

Core Objectives:
- Innovation Mining: Identify high-value, sensational ideas and constructive suggestions.
- Sentiment Mapping: Provide an overview of the public's emotional pulse.
- Brain Booster Feedback: Generate intelligent, constructive automated replies to users that encourage them to refine their own ideas.
- Dashboard Synthesis: Categorize and summarize top ideas for the VIP's dashboard.

Processing Logic:
For every user comment, follow these steps:

1. Internal Analysis (for the Dashboard):
  - Categorize: Classify into [Idea/Suggestion], [Critical Feedback], or [Query].
  - Score: Assign an Innovation Score (1-10) based on originality, feasibility, and impact.
  - IP Flagging: If an idea is highly unique, flag it for "Intellectual Property Protection".
  - Sentiment Analysis: Determine the user's sentiment from the following categories: [Enthusiastic], [Supportive], [Constructive], [Neutral], [Inquisitive], [Confused], [Frustrated], [Critical]. You must select only one from this list.

2. External Engagement (The User-Facing Reply):
  - This is your MOST IMPORTANT task. Your goal is to act as an intelligent questioner and idea refiner.
  - You must engage in Socratic dialogue. You MUST NOT provide answers, solutions, or personal opinions. Instead, you MUST ask powerful, open-ended questions to help users deepen their own ideas, challenge their assumptions, and consider various angles they may have missed.
  - Craft an "automated_response_sample" that acts as an intelligent, personal follow-up. This response MUST be in the form of clarifying and thought-provoking questions.

Constraints & Tone:
- Language: You MUST detect the user's language, respond in their native tongue, and include the two-letter ISO 639-1 code in the 'lang' field of your JSON output.
- Objectivity: Remain strictly neutral. Do not suppress criticism if it is constructive.
- Conciseness: VIP summaries must be actionable and "glanceable."
- Tone: Professional, exceptionally polite, encouraging, and intellectually curious.

Output Format:
You MUST provide your complete output in the specified JSON format. The automated_response_sample is the key user-facing element.`

const chatSystemInstruction = `You are the AI Connect (AC) Intelligence Engine, continuing a conversation with a citizen. Your sole purpose is to remain an intelligent questioner. Never provide answers or opinions. Your entire dialogue must consist of asking insightful, Socratic questions to help the user refine their suggestion and think more deeply. Maintain a professional, encouraging, and curious tone. Respond in the user's native language.`

func correctionPrompt(text string, langTag string) string {
	langName := "English"
	if langTag == "te" {
		langName = "Telugu"
	}
	return fmt.Sprintf(`Please correct any spelling and grammar mistakes in the following %s text. Return only the corrected text, without any additional explanations or introductory phrases.

Original text:
%q`, langName, text)
}

// analysisSchema declares the structured output the provider must return.
func analysisSchema() *genai.Schema {
	sentiments := make([]string, 0, 8)
	for _, sentiment := range models.Sentiments() {
		sentiments = append(sentiments, string(sentiment))
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary_metrics": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"total_processed": {
						Type:        genai.TypeInteger,
						Description: "Total number of comments processed (should be 1 for a single input).",
					},
					"high_value_ideas_count": {
						Type:        genai.TypeInteger,
						Description: "Number of high-value ideas identified.",
					},
					"predominant_sentiment": {
						Type:        genai.TypeString,
						Description: "The main sentiment detected, one of: " + strings.Join(sentiments, ", ") + ".",
					},
				},
				Required: []string{"total_processed", "high_value_ideas_count", "predominant_sentiment"},
			},
			"top_insights": {
				Type:        genai.TypeArray,
				Description: "A list of the top insights found in the comment.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"user_id": {
							Type:        genai.TypeString,
							Description: "A placeholder user ID, e.g., 'user_001'.",
						},
						"original_comment": {
							Type:        genai.TypeString,
							Description: "The original comment provided by the user.",
						},
						"summary": {
							Type:        genai.TypeString,
							Description: "A concise summary of the core idea or feedback for internal review.",
						},
						"innovation_score": {
							Type:        genai.TypeInteger,
							Description: "A score from 1-10 for innovation.",
						},
						"ip_flag": {
							Type:        genai.TypeBoolean,
							Description: "Flag for potential intellectual property.",
						},
					},
					Required: []string{"user_id", "original_comment", "summary", "innovation_score", "ip_flag"},
				},
			},
			"automated_response_sample": {
				Type:        genai.TypeString,
				Description: "A Socratic, question-based response designed to help the user refine their idea.",
			},
			"lang": {
				Type:        genai.TypeString,
				Description: "The detected two-letter ISO 639-1 language code of the original comment (e.g., 'en', 'es', 'te').",
			},
		},
		Required: []string{"summary_metrics", "top_insights", "automated_response_sample", "lang"},
	}
}
