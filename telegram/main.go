package telegram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"introspeechdev/logger"
	"introspeechdev/speech"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const regenPrefix = "regen:"

const msgSpeechGone = "I can't find that speech anymore. Send your details again."

const helpText = `Send me a message with one field per line and I'll write your self-introduction speech:

Name: Jordan Lee
Identity/Role: product designer
Background: ten years in agencies (optional)
What I do: I help small teams ship their first app
Motivation: I believe good design saves people time`

// sender is the part of *tgbotapi.BotAPI the bot uses to talk back.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type TelegramConnectProps struct {
	Logger  *logger.LogMiddleware
	Service *speech.Service
	// Token falls back to TELEGRAM_BOT_TOKEN.
	Token string
}

type Telegram struct {
	logger  *logger.LogMiddleware
	bot     *tgbotapi.BotAPI
	sender  sender
	service *speech.Service

	// owners maps a request id to the chat it was written for. Regenerate
	// buttons only work in that chat.
	mu     sync.Mutex
	owners map[int64]int64
}

// Configured reports whether a bot token is available in the environment.
func Configured() bool {
	return os.Getenv("TELEGRAM_BOT_TOKEN") != ""
}

func Connect(ctx context.Context, args TelegramConnectProps) (*Telegram, error) {
	tracer := otel.Tracer("telegram/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	botToken := args.Token
	if botToken == "" {
		botToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	if botToken == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN environment variable not set")
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	debug := os.Getenv("TELEGRAM_DEBUG") == "true"
	bot.Debug = debug

	span.SetAttributes(
		attribute.String("bot.username", bot.Self.UserName),
		attribute.Bool("bot.debug", debug),
	)

	args.Logger.Logger(ctx).Info("[Telegram] Bot connected successfully",
		zap.String("username", bot.Self.UserName),
		zap.Bool("debug", debug),
	)

	return &Telegram{
		logger:  args.Logger,
		bot:     bot,
		sender:  bot,
		service: args.Service,
	}, nil
}

// Listen handles updates until ctx is done.
func (t *Telegram) Listen(ctx context.Context) {
	tracer := otel.Tracer("telegram/Listen")
	ctx, span := tracer.Start(ctx, "Listen")
	defer span.End()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)

	t.logger.Logger(ctx).Info("[Telegram] Starting message listener")

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			t.logger.Logger(ctx).Info("[Telegram] Shutting down listener")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			t.handleUpdate(ctx, update)
		}
	}
}

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	tracer := otel.Tracer("telegram/handleUpdate")
	ctx, span := tracer.Start(ctx, "handleUpdate")
	defer span.End()

	switch {
	case update.Message != nil:
		t.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		t.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

func (t *Telegram) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	tracer := otel.Tracer("telegram/handleMessage")
	ctx, span := tracer.Start(ctx, "handleMessage")
	defer span.End()

	if message.From == nil || message.Text == "" {
		return
	}

	user := message.From
	span.SetAttributes(
		attribute.Int64("user.id", user.ID),
		attribute.String("user.username", user.UserName),
	)

	t.logger.Logger(ctx).Info("[Telegram] Received message",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.UserName),
		zap.Int("text.length", len(message.Text)),
	)

	chatID := message.Chat.ID
	if message.IsCommand() {
		switch message.Command() {
		case "start", "help":
			t.send(ctx, tgbotapi.NewMessage(chatID, helpText))
		default:
			t.send(ctx, tgbotapi.NewMessage(chatID, "Unknown command. Send /help to see the message format."))
		}
		return
	}

	form, ok := ParseIntroMessage(message.Text)
	if !ok {
		t.send(ctx, tgbotapi.NewMessage(chatID, helpText))
		return
	}

	t.sendTyping(ctx, chatID)
	request, result, err := t.service.Generate(ctx, form)
	t.replyWithSpeech(ctx, chatID, request, result, err)
}

func (t *Telegram) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	tracer := otel.Tracer("telegram/handleCallbackQuery")
	ctx, span := tracer.Start(ctx, "handleCallbackQuery")
	defer span.End()

	if query.From == nil {
		return
	}

	span.SetAttributes(
		attribute.Int64("user.id", query.From.ID),
		attribute.String("callback.data", query.Data),
	)

	t.logger.Logger(ctx).Info("[Telegram] Received callback query",
		zap.Int64("user_id", query.From.ID),
		zap.String("data", query.Data),
	)

	id, ok := parseRegenData(query.Data)
	if !ok || query.Message == nil {
		t.request(ctx, tgbotapi.NewCallback(query.ID, ""))
		return
	}

	chatID := query.Message.Chat.ID
	owner, known := t.ownerOf(id)
	if !known {
		t.request(ctx, tgbotapi.NewCallback(query.ID, ""))
		t.send(ctx, tgbotapi.NewMessage(chatID, msgSpeechGone))
		return
	}
	if owner != chatID {
		t.logger.Logger(ctx).Warn("[Telegram] Rejected regenerate from another chat",
			zap.Int64("request_id", id),
			zap.Int64("chat_id", chatID),
		)
		t.request(ctx, tgbotapi.NewCallback(query.ID, "This speech belongs to another chat."))
		return
	}

	t.request(ctx, tgbotapi.NewCallback(query.ID, "Writing a new version..."))

	t.sendTyping(ctx, chatID)
	request, result, err := t.service.Regenerate(ctx, id)
	t.replyWithSpeech(ctx, chatID, request, result, err)
}

func (t *Telegram) replyWithSpeech(ctx context.Context, chatID int64, request *speech.SpeechRequest, result *speech.SpeechResult, err error) {
	var verr *speech.ValidationError
	switch {
	case errors.As(err, &verr):
		t.send(ctx, tgbotapi.NewMessage(chatID, formatValidationError(verr)))
		return
	case errors.Is(err, speech.ErrRequestNotFound):
		t.send(ctx, tgbotapi.NewMessage(chatID, msgSpeechGone))
		return
	case err != nil:
		t.logger.Logger(ctx).Error("[Telegram] Speech generation failed", zap.Error(err))
		t.send(ctx, tgbotapi.NewMessage(chatID, "Failed to generate speech. Please try again."))
		return
	}

	t.setOwner(request.ID, chatID)

	msg := tgbotapi.NewMessage(chatID, formatSpeech(result))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Regenerate", regenPrefix+strconv.FormatInt(request.ID, 10)),
		),
	)
	t.send(ctx, msg)

	report := t.service.Analyze(ctx, result.Speech)
	t.send(ctx, tgbotapi.NewMessage(chatID, report.Commentary.String()))
}

func (t *Telegram) setOwner(requestID, chatID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.owners == nil {
		t.owners = make(map[int64]int64)
	}
	t.owners[requestID] = chatID
}

func (t *Telegram) ownerOf(requestID int64) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	chatID, ok := t.owners[requestID]
	return chatID, ok
}

func (t *Telegram) send(ctx context.Context, c tgbotapi.Chattable) {
	if _, err := t.sender.Send(c); err != nil {
		t.logger.Logger(ctx).Error("[Telegram] Failed to send message", zap.Error(err))
	}
}

func (t *Telegram) request(ctx context.Context, c tgbotapi.Chattable) {
	if _, err := t.sender.Request(c); err != nil {
		t.logger.Logger(ctx).Warn("[Telegram] Request failed", zap.Error(err))
	}
}

func (t *Telegram) sendTyping(ctx context.Context, chatID int64) {
	t.request(ctx, tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
}

func formatSpeech(result *speech.SpeechResult) string {
	return fmt.Sprintf("%s\n\n%d words · about %d min to deliver", result.Speech, result.WordCount, result.ReadTime)
}

func formatValidationError(verr *speech.ValidationError) string {
	var b strings.Builder
	b.WriteString("Invalid input data:\n")
	for _, fe := range verr.Errors {
		fmt.Fprintf(&b, "- %s: %s\n", fe.Field, fe.Message)
	}
	b.WriteString("\n")
	b.WriteString(helpText)
	return b.String()
}

func parseRegenData(data string) (int64, bool) {
	raw, ok := strings.CutPrefix(data, regenPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
