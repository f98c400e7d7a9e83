package lang

import (
	"strings"
	"sync"

	lingua "github.com/pemistahl/lingua-go"
)

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// The detector model is expensive to build, so it is constructed once on
// first use.
func languageDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.AllLanguages()...).
			WithMinimumRelativeDistance(0.25).
			Build()
	})
	return detector
}

// Detect returns the ISO 639-1 code for the text's most likely language,
// falling back to "en" when detection is inconclusive. Used to pick a
// speech language for posts that have no analysis yet; analyzed posts
// carry the provider-detected code instead.
func Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return "en"
	}

	language, ok := languageDetector().DetectLanguageOf(text)
	if !ok {
		return "en"
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return "en"
	}
	return code
}

// speechTags maps ISO 639-1 codes to the BCP-47 tags speech devices want.
var speechTags = map[string]string{
	"en": "en-US",
	"te": "te-IN",
	"es": "es-ES",
	"fr": "fr-FR",
	"de": "de-DE",
	"hi": "hi-IN",
	"nb": "nb-NO",
	"nn": "nn-NO",
}

// SpeechTag converts a two-letter language code into the tag handed to
// the speech capture and playback devices.
func SpeechTag(code string) string {
	if tag, ok := speechTags[strings.ToLower(code)]; ok {
		return tag
	}
	return "en-US"
}
