package models

// Sentiment is the emotional category the provider assigns to a comment.
// The provider must supply exactly one of the values below; the core never
// infers or defaults a sentiment.
type Sentiment string

const (
	SentimentEnthusiastic Sentiment = "Enthusiastic"
	SentimentSupportive   Sentiment = "Supportive"
	SentimentConstructive Sentiment = "Constructive"
	SentimentNeutral      Sentiment = "Neutral"
	SentimentInquisitive  Sentiment = "Inquisitive"
	SentimentConfused     Sentiment = "Confused"
	SentimentFrustrated   Sentiment = "Frustrated"
	SentimentCritical     Sentiment = "Critical"
)

// Sentiments lists every valid sentiment in the order the provider prompt
// presents them.
func Sentiments() []Sentiment {
	return []Sentiment{
		SentimentEnthusiastic,
		SentimentSupportive,
		SentimentConstructive,
		SentimentNeutral,
		SentimentInquisitive,
		SentimentConfused,
		SentimentFrustrated,
		SentimentCritical,
	}
}

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentEnthusiastic, SentimentSupportive, SentimentConstructive,
		SentimentNeutral, SentimentInquisitive, SentimentConfused,
		SentimentFrustrated, SentimentCritical:
		return true
	}
	return false
}
