package openaiapi

import (
	"context"
	"fmt"
	"io"
	"os"

	"introspeechdev/logger"
	"introspeechdev/modelapi"
	"introspeechdev/speech"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

type OpenAI struct {
	logger    *logger.LogMiddleware
	semaphore *semaphore.Weighted
	client    *openai.Client
	model     string
}

type OpenAIConnectProps struct {
	Logger *logger.LogMiddleware
	// APIKey and Model fall back to OPENAI_API_KEY and OPENAI_MODEL.
	APIKey string
	Model  string
	// BaseURL points the client at a compatible endpoint.
	BaseURL string
}

// Connect never fails on a missing key; calls then fail upstream.
func Connect(ctx context.Context, args OpenAIConnectProps) *OpenAI {
	tracer := otel.Tracer("openaiapi/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	maxWorkers := 10
	sem := semaphore.NewWeighted(int64(maxWorkers))

	apiKey := args.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		args.Logger.Logger(ctx).Warn("[OpenAIAPI] OPENAI_API_KEY is not set, generation calls will fail")
	}
	model := args.Model
	if model == "" {
		model = os.Getenv("OPENAI_MODEL")
	}
	if model == "" {
		model = modelapi.OPENAI_MODEL_NAME
	}

	span.SetAttributes(attribute.Int("maxWorkers", maxWorkers), attribute.String("model", model))

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if args.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(args.BaseURL))
	}
	client := openai.NewClient(opts...)

	return &OpenAI{logger: args.Logger, semaphore: sem, client: &client, model: model}
}

func (o *OpenAI) Name() string {
	return "openai"
}

func (o *OpenAI) chatParams(systemPrompt string, userPrompt string) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
		Temperature: openai.Float(modelapi.TEMPERATURE),
		MaxTokens:   openai.Int(modelapi.MAX_TOKENS),
	}
}

// GenerateSpeech makes exactly one chat completion call in JSON mode.
func (o *OpenAI) GenerateSpeech(ctx context.Context, systemPrompt string, userPrompt string) (*speech.SpeechResult, error) {
	tracer := otel.Tracer("openaiapi/GenerateSpeech")
	ctx, span := tracer.Start(ctx, "GenerateSpeech")
	defer span.End()
	o.logger.Logger(ctx).Info("[OpenAIAPI] Generating speech", zap.String("model", o.model), zap.Int("prompt.length", len(userPrompt)))

	if err := o.semaphore.Acquire(ctx, 1); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %w", speech.ErrGenerationFailed, err)
	}
	defer o.semaphore.Release(1)

	resp, err := o.client.Chat.Completions.New(ctx, o.chatParams(systemPrompt, userPrompt))
	if err != nil {
		span.RecordError(err)
		o.logger.Logger(ctx).Error("[OpenAIAPI] Chat completion failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", speech.ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		span.AddEvent("EmptyResponse")
		return nil, fmt.Errorf("%w: empty choices in response", speech.ErrGenerationFailed)
	}

	result, err := modelapi.ParseSpeechPayload(resp.Choices[0].Message.Content)
	if err != nil {
		span.RecordError(err)
		o.logger.Logger(ctx).Error("[OpenAIAPI] Unusable speech payload", zap.Error(err))
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("speech.word_count", result.WordCount),
		attribute.Int64("usage.total_tokens", resp.Usage.TotalTokens),
	)
	return result, nil
}

// Narrate renders text as MP3 audio.
func (o *OpenAI) Narrate(ctx context.Context, text string) ([]byte, error) {
	tracer := otel.Tracer("openaiapi/Narrate")
	ctx, span := tracer.Start(ctx, "Narrate")
	defer span.End()
	o.logger.Logger(ctx).Info("[OpenAIAPI] Narrating speech", zap.Int("text.length", len(text)))

	if err := o.semaphore.Acquire(ctx, 1); err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer o.semaphore.Release(1)

	res, err := o.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
		Model:          openai.SpeechModelGPT4oMiniTTS,
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoiceSage,
		Instructions:   openai.String(modelapi.NARRATION_INSTRUCTION),
	})
	if err != nil {
		span.RecordError(err)
		o.logger.Logger(ctx).Error("[OpenAIAPI] Speech synthesis failed", zap.Error(err))
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	defer res.Body.Close()

	audioBytes, err := io.ReadAll(res.Body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("read synthesized audio: %w", err)
	}

	span.SetAttributes(attribute.Int("audio.bytes", len(audioBytes)))
	return audioBytes, nil
}
