package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"

	"introspeechdev/database/memory"
	"introspeechdev/logger"
	"introspeechdev/speech"
	"introspeechdev/speech/mock"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func newTestBot(gen *mock.Generator) (*Telegram, *fakeSender) {
	log := logger.Connect(logger.LoggerConnectProps{Core: zapcore.NewNopCore()})
	svc := speech.NewService(speech.ServiceProps{
		Logger:       log,
		Storage:      memory.New(),
		Generator:    gen,
		SystemPrompt: "sys",
	})
	fs := &fakeSender{}
	return &Telegram{logger: log, sender: fs, service: svc}, fs
}

func textMessage(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		From: &tgbotapi.User{ID: 7, UserName: "jordan"},
		Chat: &tgbotapi.Chat{ID: 42},
	}
}

func TestParseIntroMessage(t *testing.T) {
	form, ok := ParseIntroMessage(`Name: Jordan Lee
identity/role:  product designer
What I do: I help small teams
ship their first app
Motivation: design saves time
Favourite color: blue`)

	require.True(t, ok)
	assert.Equal(t, speech.FormData{
		Name:       "Jordan Lee",
		Identity:   "product designer",
		WhatYouDo:  "I help small teams ship their first app",
		Motivation: "design saves time Favourite color: blue",
	}, form)
}

func TestParseIntroMessageNoLabels(t *testing.T) {
	form, ok := ParseIntroMessage("hello there: how are you")
	assert.False(t, ok)
	assert.Equal(t, speech.FormData{}, form)
}

func TestParseRegenData(t *testing.T) {
	id, ok := parseRegenData("regen:12")
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)

	for _, data := range []string{"regen:", "regen:abc", "regen:0", "other:12", ""} {
		_, ok := parseRegenData(data)
		assert.False(t, ok, data)
	}
}

func TestHandleMessageGeneratesSpeech(t *testing.T) {
	gen := &mock.Generator{Result: speech.SpeechResult{Speech: "Hi, I'm Jordan Lee.", WordCount: 300, ReadTime: 2}}
	bot, fs := newTestBot(gen)

	bot.handleMessage(context.Background(), textMessage("Name: Jordan Lee\nRole: designer\nWhat I do: apps\nWhy: time"))

	require.Equal(t, 1, gen.CallCount())
	require.Len(t, fs.sent, 2)

	speechMsg := fs.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(42), speechMsg.ChatID)
	assert.Equal(t, "Hi, I'm Jordan Lee.\n\n300 words · about 2 min to deliver", speechMsg.Text)
	markup, ok := speechMsg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.NotNil(t, markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "regen:1", *markup.InlineKeyboard[0][0].CallbackData)

	assert.Contains(t, fs.texts()[1], "WHO Framework Component:")
}

func TestHandleMessageValidationError(t *testing.T) {
	gen := &mock.Generator{}
	bot, fs := newTestBot(gen)

	bot.handleMessage(context.Background(), textMessage("Name: Jordan Lee"))

	assert.Equal(t, 0, gen.CallCount())
	texts := fs.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "- identity: Required")
	assert.Contains(t, texts[0], "- whatYouDo: Required")
	assert.Contains(t, texts[0], "- motivation: Required")
}

func TestHandleMessageGenerationFailure(t *testing.T) {
	gen := &mock.Generator{Err: errors.New("upstream down")}
	bot, fs := newTestBot(gen)

	bot.handleMessage(context.Background(), textMessage("Name: A\nRole: B\nWhat I do: C\nWhy: D"))

	assert.Equal(t, []string{"Failed to generate speech. Please try again."}, fs.texts())
}

func TestHandleMessageHelp(t *testing.T) {
	bot, fs := newTestBot(&mock.Generator{})

	msg := textMessage("/start")
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}
	bot.handleMessage(context.Background(), msg)

	bot.handleMessage(context.Background(), textMessage("just some words"))

	assert.Equal(t, []string{helpText, helpText}, fs.texts())
}

func TestHandleCallbackRegenerates(t *testing.T) {
	gen := &mock.Generator{Result: speech.SpeechResult{Speech: "First.", WordCount: 1, ReadTime: 1}}
	bot, fs := newTestBot(gen)
	bot.handleMessage(context.Background(), textMessage("Name: A\nRole: B\nWhat I do: C\nWhy: D"))

	gen.Result = speech.SpeechResult{Speech: "Second.", WordCount: 1, ReadTime: 1}
	bot.handleCallbackQuery(context.Background(), &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: 7},
		Message: textMessage(""),
		Data:    "regen:1",
	})

	assert.Equal(t, 2, gen.CallCount())
	texts := fs.texts()
	require.Len(t, texts, 4)
	assert.Equal(t, "Second.\n\n1 words · about 1 min to deliver", texts[2])

	markup := fs.sent[2].(tgbotapi.MessageConfig).ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	assert.Equal(t, "regen:2", *markup.InlineKeyboard[0][0].CallbackData)
}

func TestHandleCallbackUnknownRequest(t *testing.T) {
	gen := &mock.Generator{}
	bot, fs := newTestBot(gen)

	bot.handleCallbackQuery(context.Background(), &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: 7},
		Message: textMessage(""),
		Data:    "regen:99",
	})

	assert.Equal(t, 0, gen.CallCount())
	assert.Equal(t, []string{"I can't find that speech anymore. Send your details again."}, fs.texts())
}

func TestHandleCallbackFromAnotherChat(t *testing.T) {
	gen := &mock.Generator{Result: speech.SpeechResult{Speech: "First.", WordCount: 1, ReadTime: 1}}
	bot, fs := newTestBot(gen)
	bot.handleMessage(context.Background(), textMessage("Name: A\nRole: B\nWhat I do: C\nWhy: D"))

	other := textMessage("")
	other.Chat = &tgbotapi.Chat{ID: 1001}
	bot.handleCallbackQuery(context.Background(), &tgbotapi.CallbackQuery{
		ID:      "cb-2",
		From:    &tgbotapi.User{ID: 8},
		Message: other,
		Data:    "regen:1",
	})

	assert.Equal(t, 1, gen.CallCount())
	assert.Len(t, fs.texts(), 2)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	last := fs.requests[len(fs.requests)-1].(tgbotapi.CallbackConfig)
	assert.Equal(t, "This speech belongs to another chat.", last.Text)
}
