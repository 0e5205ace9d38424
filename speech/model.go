// Package speech holds the self-introduction domain: the form a user fills
// in, the stored request record, the generation result, the prompt builder
// and the service that runs a submission through generation and storage.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrGenerationFailed is returned when the generation service could not
	// be reached or returned a payload that is not a usable speech.
	ErrGenerationFailed = errors.New("speech generation failed")
	// ErrRequestNotFound is returned by stores for unknown ids.
	ErrRequestNotFound = errors.New("speech request not found")
	// ErrInconsistentResult is returned when an update would leave exactly
	// one of GeneratedSpeech and WordCount set.
	ErrInconsistentResult = errors.New("generated speech and word count must be set together")
	// ErrNarrationUnavailable is returned when no narrator is configured.
	ErrNarrationUnavailable = errors.New("narration is not configured")
)

// WordsPerMinute is the average speaking rate used to estimate read time.
const WordsPerMinute = 150

type FormData struct {
	Name       string `json:"name"`
	Identity   string `json:"identity"`
	Background string `json:"background,omitempty"`
	WhatYouDo  string `json:"whatYouDo"`
	Motivation string `json:"motivation"`
}

type SpeechRequest struct {
	ID int64 `json:"id"`
	FormData
	GeneratedSpeech *string `json:"generatedSpeech"`
	WordCount       *int    `json:"wordCount"`
}

// HasResult reports whether generation results are attached.
func (r *SpeechRequest) HasResult() bool {
	return r.GeneratedSpeech != nil && r.WordCount != nil
}

// Clone returns a deep copy so callers cannot mutate stored records.
func (r *SpeechRequest) Clone() *SpeechRequest {
	c := *r
	if r.GeneratedSpeech != nil {
		s := *r.GeneratedSpeech
		c.GeneratedSpeech = &s
	}
	if r.WordCount != nil {
		n := *r.WordCount
		c.WordCount = &n
	}
	return &c
}

// SpeechRequestUpdate carries the fields to overwrite on a stored request.
// Nil fields are left untouched.
type SpeechRequestUpdate struct {
	GeneratedSpeech *string
	WordCount       *int
}

// Apply merges u into r and checks that the result fields stay paired.
func (u SpeechRequestUpdate) Apply(r *SpeechRequest) error {
	merged := r.Clone()
	if u.GeneratedSpeech != nil {
		s := *u.GeneratedSpeech
		merged.GeneratedSpeech = &s
	}
	if u.WordCount != nil {
		n := *u.WordCount
		merged.WordCount = &n
	}
	if (merged.GeneratedSpeech == nil) != (merged.WordCount == nil) {
		return ErrInconsistentResult
	}
	*r = *merged
	return nil
}

type SpeechResult struct {
	Speech    string `json:"speech"`
	WordCount int    `json:"wordCount"`
	ReadTime  int    `json:"readTime"`
}

// ReadTimeMinutes returns ceil(wordCount / WordsPerMinute).
func ReadTimeMinutes(wordCount int) int {
	if wordCount <= 0 {
		return 0
	}
	return (wordCount + WordsPerMinute - 1) / WordsPerMinute
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return fmt.Sprintf("invalid input data: %s", strings.Join(parts, "; "))
}

// Storage persists speech requests. Implementations must be safe for
// concurrent use and must hand out strictly increasing ids starting at 1.
type Storage interface {
	CreateSpeechRequest(ctx context.Context, form FormData) (*SpeechRequest, error)
	UpdateSpeechRequest(ctx context.Context, id int64, update SpeechRequestUpdate) (*SpeechRequest, error)
	GetSpeechRequest(ctx context.Context, id int64) (*SpeechRequest, error)
	Ping(ctx context.Context) error
}

// Generator sends a built prompt to a hosted language model and returns the
// parsed speech. Implementations must not retry.
type Generator interface {
	Name() string
	GenerateSpeech(ctx context.Context, systemPrompt string, userPrompt string) (*SpeechResult, error)
}

// Narrator renders speech text to audio.
type Narrator interface {
	Narrate(ctx context.Context, text string) ([]byte, error)
}
