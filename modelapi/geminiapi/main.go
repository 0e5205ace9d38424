package geminiapi

import (
	"context"
	"errors"
	"fmt"
	"os"

	"introspeechdev/logger"
	"introspeechdev/modelapi"
	"introspeechdev/speech"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"google.golang.org/genai"
)

var errMissingKey = errors.New("GEMINI_SECRET_KEY is not set")

type GeminiConnectProps struct {
	Logger *logger.LogMiddleware
	// APIKey and Model fall back to GEMINI_SECRET_KEY and GEMINI_MODEL.
	APIKey string
	Model  string
}

type Gemini struct {
	logger    *logger.LogMiddleware
	client    *genai.Client
	semaphore *semaphore.Weighted
	model     string
}

func Connect(ctx context.Context, args GeminiConnectProps) (*Gemini, error) {
	tracer := otel.Tracer("geminiapi/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()
	args.Logger.Logger(ctx).Info("[GeminiAPI] Connecting Gemini API client")

	maxWorkers := 10

	model := args.Model
	if model == "" {
		model = os.Getenv("GEMINI_MODEL")
	}
	if model == "" {
		model = modelapi.GEMINI_MODEL_NAME
	}

	span.SetAttributes(attribute.Int("maxWorkers", maxWorkers), attribute.String("model", model))

	apiKey := args.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_SECRET_KEY")
	}
	if apiKey == "" {
		args.Logger.Logger(ctx).Warn("[GeminiAPI] GEMINI_SECRET_KEY is not set, generation calls will fail")
		return &Gemini{logger: args.Logger, semaphore: semaphore.NewWeighted(int64(maxWorkers)), model: model}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		span.RecordError(err)
		args.Logger.Logger(ctx).Error("[GeminiAPI] Could not create Gemini client", zap.Error(err))
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{
		logger:    args.Logger,
		client:    client,
		semaphore: semaphore.NewWeighted(int64(maxWorkers)),
		model:     model,
	}, nil
}

func (g *Gemini) Name() string {
	return "gemini"
}

// SpeechSchema is the structured output the model is constrained to.
func SpeechSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"speech": {
				Type:        genai.TypeString,
				Description: "The complete speech text optimized for speaking",
			},
			"wordCount": {
				Type:        genai.TypeInteger,
				Description: "Actual word count of the speech",
			},
			"readTime": {
				Type:        genai.TypeInteger,
				Description: "Estimated read time in minutes",
			},
		},
		Required:         []string{"speech", "wordCount", "readTime"},
		PropertyOrdering: []string{"speech", "wordCount", "readTime"},
	}
}

func generateConfig(systemPrompt string) *genai.GenerateContentConfig {
	thinkingBudget := int32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		Temperature:       genai.Ptr[float32](modelapi.TEMPERATURE),
		MaxOutputTokens:   modelapi.MAX_TOKENS,
		ResponseMIMEType:  "application/json",
		ResponseSchema:    SpeechSchema(),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
	}
}

// GenerateSpeech makes exactly one GenerateContent call.
func (g *Gemini) GenerateSpeech(ctx context.Context, systemPrompt string, userPrompt string) (*speech.SpeechResult, error) {
	tracer := otel.Tracer("geminiapi/GenerateSpeech")
	ctx, span := tracer.Start(ctx, "GenerateSpeech")
	defer span.End()
	g.logger.Logger(ctx).Info("[GeminiAPI] GenerateSpeech called", zap.Int("prompt.length", len(userPrompt)))

	if g.client == nil {
		return nil, fmt.Errorf("%w: %w", speech.ErrGenerationFailed, errMissingKey)
	}

	if err := g.semaphore.Acquire(ctx, 1); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %w", speech.ErrGenerationFailed, err)
	}
	defer g.semaphore.Release(1)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(userPrompt), generateConfig(systemPrompt))
	if err != nil {
		span.RecordError(err)
		g.logger.Logger(ctx).Error("[GeminiAPI] Error generating LLM content", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", speech.ErrGenerationFailed, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		span.AddEvent("EmptyResponse")
		g.logger.Logger(ctx).Warn("[GeminiAPI] Received empty or invalid LLM response")
		return nil, fmt.Errorf("%w: empty response", speech.ErrGenerationFailed)
	}

	result, err := modelapi.ParseSpeechPayload(resp.Text())
	if err != nil {
		span.RecordError(err)
		g.logger.Logger(ctx).Error("[GeminiAPI] Unusable speech payload", zap.Error(err))
		return nil, err
	}

	span.AddEvent("LLM generation successful")
	return result, nil
}
