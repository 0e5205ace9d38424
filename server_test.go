package main

import (
	"context"
	"testing"

	"introspeechdev/database/memory"
	"introspeechdev/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGenerationProvider(t *testing.T) {
	tests := []struct {
		env     string
		want    string
		wantErr bool
	}{
		{"", "openai", false},
		{"openai", "openai", false},
		{" Gemini ", "gemini", false},
		{"GROQ", "groq", false},
		{"anthropic", "", true},
	}
	for _, tt := range tests {
		t.Setenv("GENERATION_PROVIDER", tt.env)
		got, err := generationProvider()
		if tt.wantErr {
			assert.Error(t, err, tt.env)
			continue
		}
		require.NoError(t, err, tt.env)
		assert.Equal(t, tt.want, got)
	}
}

func TestConnectStorageFallsBackToMemory(t *testing.T) {
	t.Setenv("POSTGRES_DB_HOST", "")
	logMiddleware := logger.Connect(logger.LoggerConnectProps{Core: zapcore.NewNopCore()})

	storage, closeStorage, err := connectStorage(context.Background(), logMiddleware)
	require.NoError(t, err)
	defer closeStorage()

	assert.IsType(t, &memory.Store{}, storage)
}

func TestConnectGeneratorGroqWithoutNarration(t *testing.T) {
	t.Setenv("GENERATION_PROVIDER", "groq")
	t.Setenv("OPENAI_API_KEY", "")
	logMiddleware := logger.Connect(logger.LoggerConnectProps{Core: zapcore.NewNopCore()})

	generator, narrator, err := connectGenerator(context.Background(), logMiddleware)
	require.NoError(t, err)
	assert.Equal(t, "groq", generator.Name())
	assert.Nil(t, narrator)
}

func TestConnectGeneratorStartsWithoutKey(t *testing.T) {
	t.Setenv("GENERATION_PROVIDER", "")
	t.Setenv("OPENAI_API_KEY", "")
	logMiddleware := logger.Connect(logger.LoggerConnectProps{Core: zapcore.NewNopCore()})

	generator, narrator, err := connectGenerator(context.Background(), logMiddleware)
	require.NoError(t, err)
	assert.Equal(t, "openai", generator.Name())
	assert.Nil(t, narrator)
}

func TestConnectGeneratorNarratesWithOpenAIKey(t *testing.T) {
	t.Setenv("GENERATION_PROVIDER", "gemini")
	t.Setenv("GEMINI_SECRET_KEY", "")
	t.Setenv("OPENAI_API_KEY", "test-key")
	logMiddleware := logger.Connect(logger.LoggerConnectProps{Core: zapcore.NewNopCore()})

	generator, narrator, err := connectGenerator(context.Background(), logMiddleware)
	require.NoError(t, err)
	assert.Equal(t, "gemini", generator.Name())
	assert.NotNil(t, narrator)
}
