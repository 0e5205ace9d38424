package speech_test

import (
	"context"
	"errors"
	"testing"

	"introspeechdev/database/memory"
	"introspeechdev/logger"
	"introspeechdev/speech"
	"introspeechdev/speech/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

const testSystemPrompt = "system prompt"

func newService(gen *mock.Generator, narrator speech.Narrator) (*speech.Service, *memory.Store) {
	store := memory.New()
	svc := speech.NewService(speech.ServiceProps{
		Logger:       logger.Connect(logger.LoggerConnectProps{Core: zapcore.NewNopCore()}),
		Storage:      store,
		Generator:    gen,
		Narrator:     narrator,
		SystemPrompt: testSystemPrompt,
	})
	return svc, store
}

func form() speech.FormData {
	return speech.FormData{
		Name:       "Jordan Lee",
		Identity:   "product designer",
		WhatYouDo:  "I help small teams ship apps",
		Motivation: "I believe good design saves people time",
	}
}

func TestGenerate(t *testing.T) {
	gen := &mock.Generator{Result: speech.SpeechResult{Speech: "Hi, I'm Jordan.", WordCount: 300, ReadTime: 2}}
	svc, store := newService(gen, nil)

	request, result, err := svc.Generate(context.Background(), form())
	require.NoError(t, err)

	assert.Equal(t, int64(1), request.ID)
	assert.Equal(t, &speech.SpeechResult{Speech: "Hi, I'm Jordan.", WordCount: 300, ReadTime: 2}, result)
	require.True(t, request.HasResult())
	assert.Equal(t, "Hi, I'm Jordan.", *request.GeneratedSpeech)
	assert.Equal(t, 300, *request.WordCount)

	require.Len(t, gen.Calls, 1)
	assert.Equal(t, testSystemPrompt, gen.Calls[0].SystemPrompt)
	assert.Equal(t, speech.BuildPrompt(form()), gen.Calls[0].UserPrompt)

	stored, err := store.GetSpeechRequest(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, request, stored)
}

func TestGenerateReadTimeFallback(t *testing.T) {
	gen := &mock.Generator{Result: speech.SpeechResult{Speech: "Hi.", WordCount: 301}}
	svc, _ := newService(gen, nil)

	_, result, err := svc.Generate(context.Background(), form())
	require.NoError(t, err)
	assert.Equal(t, 3, result.ReadTime)
}

func TestGenerateRejectsInvalidFormBeforeAnyCall(t *testing.T) {
	gen := &mock.Generator{}
	svc, store := newService(gen, nil)

	invalid := form()
	invalid.Motivation = ""
	request, result, err := svc.Generate(context.Background(), invalid)

	var verr *speech.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "motivation", verr.Errors[0].Field)
	assert.Nil(t, request)
	assert.Nil(t, result)
	assert.Equal(t, 0, gen.CallCount())
	assert.Equal(t, 0, store.Len())
}

func TestGenerateFailureKeepsRequestWithoutResult(t *testing.T) {
	gen := &mock.Generator{Err: errors.New("upstream 503")}
	svc, store := newService(gen, nil)

	request, result, err := svc.Generate(context.Background(), form())
	assert.ErrorIs(t, err, speech.ErrGenerationFailed)
	assert.Contains(t, err.Error(), "upstream 503")
	assert.Nil(t, result)
	require.NotNil(t, request)
	assert.False(t, request.HasResult())

	stored, err := store.GetSpeechRequest(context.Background(), request.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasResult())
	assert.Equal(t, 1, gen.CallCount())
}

func TestGenerateDoesNotDoubleWrapGenerationErrors(t *testing.T) {
	gen := &mock.Generator{Err: speech.ErrGenerationFailed}
	svc, _ := newService(gen, nil)

	_, _, err := svc.Generate(context.Background(), form())
	assert.Equal(t, speech.ErrGenerationFailed, err)
}

func TestRegenerate(t *testing.T) {
	gen := &mock.Generator{Result: speech.SpeechResult{Speech: "Take one.", WordCount: 2, ReadTime: 1}}
	svc, store := newService(gen, nil)

	first, _, err := svc.Generate(context.Background(), form())
	require.NoError(t, err)

	gen.Result = speech.SpeechResult{Speech: "Take two.", WordCount: 2, ReadTime: 1}
	second, result, err := svc.Regenerate(context.Background(), first.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, first.FormData, second.FormData)
	assert.Equal(t, "Take two.", result.Speech)
	assert.Equal(t, 2, gen.CallCount())
	assert.Equal(t, gen.Calls[0].UserPrompt, gen.Calls[1].UserPrompt)

	original, err := store.GetSpeechRequest(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Take one.", *original.GeneratedSpeech)
}

func TestRegenerateUnknownRequest(t *testing.T) {
	gen := &mock.Generator{}
	svc, _ := newService(gen, nil)

	_, _, err := svc.Regenerate(context.Background(), 42)
	assert.ErrorIs(t, err, speech.ErrRequestNotFound)
	assert.Equal(t, 0, gen.CallCount())
}

func TestGet(t *testing.T) {
	svc, _ := newService(&mock.Generator{Result: speech.SpeechResult{Speech: "Hi.", WordCount: 1}}, nil)

	created, _, err := svc.Generate(context.Background(), form())
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = svc.Get(context.Background(), 99)
	assert.ErrorIs(t, err, speech.ErrRequestNotFound)
}

func TestAnalyze(t *testing.T) {
	svc, _ := newService(&mock.Generator{}, nil)

	report := svc.Analyze(context.Background(), "Hi, I'm Sam. I coach runners so they finish strong.")
	require.NotNil(t, report.Findings.SpeakerName)
	assert.Equal(t, "Sam", *report.Findings.SpeakerName)
	assert.Equal(t, 10, report.Findings.WordCount)
}

func TestNarrate(t *testing.T) {
	svc, _ := newService(&mock.Generator{}, nil)
	assert.False(t, svc.CanNarrate())
	_, err := svc.Narrate(context.Background(), "Hello.")
	assert.ErrorIs(t, err, speech.ErrNarrationUnavailable)

	narrator := &mock.Narrator{Audio: []byte("ID3")}
	svc, _ = newService(&mock.Generator{}, narrator)
	assert.True(t, svc.CanNarrate())
	audio, err := svc.Narrate(context.Background(), "Hello.")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3"), audio)
	assert.Equal(t, []string{"Hello."}, narrator.Texts)
}

func TestReady(t *testing.T) {
	svc, _ := newService(&mock.Generator{}, nil)
	assert.NoError(t, svc.Ready(context.Background()))
}
