package groqapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"introspeechdev/httpmiddleware"
	"introspeechdev/logger"
	"introspeechdev/modelapi"
	"introspeechdev/speech"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	SYSTEM = "system"
	USER   = "user"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

type ChatCompletionInputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatRequestInput struct {
	Model          string                       `json:"model"`
	Messages       []ChatCompletionInputMessage `json:"messages"`
	MaxTokens      int                          `json:"max_tokens"`
	Temperature    float64                      `json:"temperature"`
	ResponseFormat *ResponseFormat              `json:"response_format,omitempty"`
}

type GroqResponse struct {
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type GroqConnectProps struct {
	Logger *logger.LogMiddleware
	// APIKey, Model and BaseURL fall back to GROQ_SECRET_KEY, GROQ_MODEL and
	// the public endpoint.
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

type Groq struct {
	logger     *logger.LogMiddleware
	semaphore  *semaphore.Weighted
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

func Connect(ctx context.Context, args GroqConnectProps) *Groq {
	tracer := otel.Tracer("groqapi/Connect")
	_, span := tracer.Start(ctx, "Connect")
	defer span.End()

	maxWorkers := 10
	sem := semaphore.NewWeighted(int64(maxWorkers))

	apiKey := args.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_SECRET_KEY")
	}
	model := args.Model
	if model == "" {
		model = os.Getenv("GROQ_MODEL")
	}
	if model == "" {
		model = modelapi.GROQ_MODEL_NAME
	}
	baseURL := args.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	span.SetAttributes(attribute.Int("maxWorkers", maxWorkers), attribute.String("model", model))

	return &Groq{
		logger:     args.Logger,
		semaphore:  sem,
		apiKey:     apiKey,
		model:      model,
		url:        baseURL + "/chat/completions",
		httpClient: args.HTTPClient,
	}
}

func (o *Groq) Name() string {
	return "groq"
}

// MakeAPIRequest sends one chat completion request. Failures are returned
// as-is; callers decide what to do with them.
func (o *Groq) MakeAPIRequest(ctx context.Context, input ChatRequestInput) (*GroqResponse, error) {
	tracer := otel.Tracer("groqapi/MakeAPIRequest")
	ctx, span := tracer.Start(ctx, "MakeAPIRequest")
	defer span.End()

	span.SetAttributes(
		attribute.String("api.url", o.url),
		attribute.Int("request.max_tokens", input.MaxTokens),
		attribute.String("request.model", input.Model),
	)

	jsonData, err := json.Marshal(input)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("could not generate request body: %w", err)
	}

	if err := o.semaphore.Acquire(ctx, 1); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer o.semaphore.Release(1)

	respBody, err := httpmiddleware.HttpRequest(ctx, httpmiddleware.HttpRequestStruct{
		Method: http.MethodPost,
		Url:    o.url,
		Body:   bytes.NewBuffer(jsonData),
		Headers: map[string]string{
			"authorization": "Bearer " + o.apiKey,
			"content-type":  "application/json",
		},
		Client: o.httpClient,
	})
	if err != nil {
		span.RecordError(err)
		o.logger.Logger(ctx).Error("[Groq-API] Could not make request to Groq", zap.Error(err))
		return nil, err
	}

	var messageResponse GroqResponse
	if err := json.Unmarshal(respBody, &messageResponse); err != nil {
		span.RecordError(err)
		o.logger.Logger(ctx).Error("[Groq-API] Could not parse Groq response",
			zap.Error(err),
			zap.Int("response_length", len(respBody)),
		)
		return nil, fmt.Errorf("decode groq response: %w", err)
	}

	span.AddEvent("Request successful")
	return &messageResponse, nil
}

func (o *Groq) GenerateSpeech(ctx context.Context, systemPrompt string, userPrompt string) (*speech.SpeechResult, error) {
	tracer := otel.Tracer("groqapi/GenerateSpeech")
	ctx, span := tracer.Start(ctx, "GenerateSpeech")
	defer span.End()

	resp, err := o.MakeAPIRequest(ctx, ChatRequestInput{
		Model:       o.model,
		MaxTokens:   modelapi.MAX_TOKENS,
		Temperature: modelapi.TEMPERATURE,
		Messages: []ChatCompletionInputMessage{
			{Role: SYSTEM, Content: systemPrompt},
			{Role: USER, Content: userPrompt},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", speech.ErrGenerationFailed, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		span.AddEvent("Empty response")
		return nil, fmt.Errorf("%w: no response received", speech.ErrGenerationFailed)
	}

	result, err := modelapi.ParseSpeechPayload(resp.Choices[0].Message.Content)
	if err != nil {
		span.RecordError(err)
		o.logger.Logger(ctx).Error("[Groq-API] Unusable speech payload", zap.Error(err))
		return nil, err
	}

	span.SetAttributes(attribute.Int("speech.word_count", result.WordCount))
	return result, nil
}
