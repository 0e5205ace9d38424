// Package modelapi holds what the generation providers share: fixed call
// parameters, the system prompt and the parser for the structured speech
// payload every provider is asked to return.
package modelapi

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"introspeechdev/speech"

	"github.com/tidwall/gjson"
)

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)\n?```")

// maxWordCount bounds wordCount so it fits the store's integer column.
const maxWordCount = math.MaxInt32

// ParseSpeechPayload turns the model's raw reply into a SpeechResult. The
// reply must hold a JSON object with a non-empty string "speech" and a
// positive "wordCount"; "readTime" defaults to the estimate for wordCount.
// Every failure wraps speech.ErrGenerationFailed.
func ParseSpeechPayload(raw string) (*speech.SpeechResult, error) {
	text := extractJSON(stripMarkdownFences(raw))
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("%w: response is not valid JSON: %s", speech.ErrGenerationFailed, truncate(raw, 200))
	}

	parsed := gjson.Parse(text)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("%w: response is not a JSON object", speech.ErrGenerationFailed)
	}

	speechField := parsed.Get("speech")
	if speechField.Type != gjson.String || strings.TrimSpace(speechField.String()) == "" {
		return nil, fmt.Errorf("%w: response is missing the speech text", speech.ErrGenerationFailed)
	}

	wordCountField := parsed.Get("wordCount")
	if wordCountField.Type != gjson.Number {
		return nil, fmt.Errorf("%w: response is missing the word count", speech.ErrGenerationFailed)
	}
	rounded := math.Round(wordCountField.Float())
	if rounded < 1 || rounded > maxWordCount {
		return nil, fmt.Errorf("%w: word count %v is out of range", speech.ErrGenerationFailed, wordCountField.Float())
	}
	wordCount := int(rounded)

	readTime := 0
	if rt := parsed.Get("readTime"); rt.Type == gjson.Number && rt.Float() > 0 && rt.Float() <= maxWordCount {
		readTime = int(math.Ceil(rt.Float()))
	}
	if readTime <= 0 {
		readTime = speech.ReadTimeMinutes(wordCount)
	}

	return &speech.SpeechResult{
		Speech:    speechField.String(),
		WordCount: wordCount,
		ReadTime:  readTime,
	}, nil
}

func stripMarkdownFences(text string) string {
	if matches := fenceRe.FindStringSubmatch(text); len(matches) > 1 {
		return matches[1]
	}
	return text
}

// extractJSON returns text unchanged when it already is a JSON value, and
// otherwise the span from the first "{" to the last "}".
func extractJSON(text string) string {
	if trimmed := strings.TrimSpace(text); gjson.Valid(trimmed) {
		return trimmed
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
