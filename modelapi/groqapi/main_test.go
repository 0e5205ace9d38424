package groqapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"introspeechdev/logger"
	"introspeechdev/modelapi"
	"introspeechdev/speech"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func fakeGroq(t *testing.T, status int, content string) (*httptest.Server, *ChatRequestInput) {
	t.Helper()
	var received ChatRequestInput
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		if status != http.StatusOK {
			http.Error(w, `{"error":"boom"}`, status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(GroqResponse{
			Model:   received.Model,
			Choices: []Choice{{Message: Message{Role: "assistant", Content: content}, FinishReason: "stop"}},
		})
	}))
	t.Cleanup(server.Close)
	return server, &received
}

func connect(t *testing.T, baseURL string) *Groq {
	t.Helper()
	return Connect(context.Background(), GroqConnectProps{
		Logger:  logger.Connect(logger.LoggerConnectProps{Core: zapcore.NewNopCore()}),
		APIKey:  "test-key",
		BaseURL: baseURL,
	})
}

func TestGenerateSpeech(t *testing.T) {
	server, received := fakeGroq(t, http.StatusOK, `{"speech":"Hi there.","wordCount":2,"readTime":1}`)
	groq := connect(t, server.URL)

	result, err := groq.GenerateSpeech(context.Background(), "sys", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, &speech.SpeechResult{Speech: "Hi there.", WordCount: 2, ReadTime: 1}, result)

	assert.Equal(t, modelapi.GROQ_MODEL_NAME, received.Model)
	assert.Equal(t, modelapi.MAX_TOKENS, received.MaxTokens)
	assert.Equal(t, modelapi.TEMPERATURE, received.Temperature)
	require.NotNil(t, received.ResponseFormat)
	assert.Equal(t, "json_object", received.ResponseFormat.Type)
	assert.Equal(t, []ChatCompletionInputMessage{
		{Role: SYSTEM, Content: "sys"},
		{Role: USER, Content: "user prompt"},
	}, received.Messages)
}

func TestGenerateSpeechUpstreamError(t *testing.T) {
	server, _ := fakeGroq(t, http.StatusServiceUnavailable, "")
	groq := connect(t, server.URL)

	_, err := groq.GenerateSpeech(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, speech.ErrGenerationFailed)
}

func TestGenerateSpeechMalformedPayload(t *testing.T) {
	server, _ := fakeGroq(t, http.StatusOK, `{"wordCount":300}`)
	groq := connect(t, server.URL)

	_, err := groq.GenerateSpeech(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, speech.ErrGenerationFailed)
}

func TestGenerateSpeechLive(t *testing.T) {
	if os.Getenv("GROQ_SECRET_KEY") == "" {
		t.Skip("GROQ_SECRET_KEY environment variable not set, skipping test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	groq := Connect(ctx, GroqConnectProps{Logger: logger.Connect(logger.LoggerConnectProps{Production: false})})
	form := speech.FormData{Name: "Jordan Lee", Identity: "product designer", WhatYouDo: "help startups", Motivation: "design saves time"}

	result, err := groq.GenerateSpeech(ctx, modelapi.SYSTEM_PROMPT, speech.BuildPrompt(form))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Speech)
	assert.Positive(t, result.WordCount)
}
