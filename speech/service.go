package speech

import (
	"context"
	"errors"
	"fmt"
	"time"

	"introspeechdev/analyzer"
	"introspeechdev/logger"
	"introspeechdev/observe"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type ServiceProps struct {
	Logger    *logger.LogMiddleware
	Storage   Storage
	Generator Generator
	// Narrator is optional; Narrate fails with ErrNarrationUnavailable without it.
	Narrator     Narrator
	Metrics      *observe.Metrics
	SystemPrompt string
}

type Service struct {
	logger       *logger.LogMiddleware
	storage      Storage
	generator    Generator
	narrator     Narrator
	metrics      *observe.Metrics
	systemPrompt string
}

func NewService(args ServiceProps) *Service {
	return &Service{
		logger:       args.Logger,
		storage:      args.Storage,
		generator:    args.Generator,
		narrator:     args.Narrator,
		metrics:      args.Metrics,
		systemPrompt: args.SystemPrompt,
	}
}

// Generate validates form, records it, asks the generator for a speech and
// attaches the result to the record. A failed generation is returned
// wrapped in ErrGenerationFailed and is never retried here.
func (s *Service) Generate(ctx context.Context, form FormData) (*SpeechRequest, *SpeechResult, error) {
	tracer := otel.Tracer("speech/Generate")
	ctx, span := tracer.Start(ctx, "Generate")
	defer span.End()

	provider := s.generator.Name()
	span.SetAttributes(attribute.String("generator", provider))

	if err := Validate(form); err != nil {
		s.metrics.RecordGeneration(ctx, provider, observe.StatusInvalid, 0)
		s.logger.Logger(ctx).Info("[Speech] Rejected invalid form", zap.Error(err))
		return nil, nil, err
	}

	request, err := s.storage.CreateSpeechRequest(ctx, form)
	if err != nil {
		span.RecordError(err)
		s.metrics.RecordGeneration(ctx, provider, observe.StatusStorageError, 0)
		s.logger.Logger(ctx).Error("[Speech] Could not store speech request", zap.Error(err))
		return nil, nil, fmt.Errorf("create speech request: %w", err)
	}
	span.SetAttributes(attribute.Int64("request.id", request.ID))

	missing := MissingFields(form)
	prompt := BuildPrompt(form)
	s.logger.Logger(ctx).Info("[Speech] Generating speech",
		zap.Int64("request_id", request.ID),
		zap.String("generator", provider),
		zap.Int("prompt.length", len(prompt)),
		zap.Strings("synthesized_fields", missing),
	)

	start := time.Now()
	result, err := s.generator.GenerateSpeech(ctx, s.systemPrompt, prompt)
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		s.metrics.RecordGeneration(ctx, provider, observe.StatusGenerationError, elapsed)
		s.logger.Logger(ctx).Error("[Speech] Generation failed",
			zap.Error(err),
			zap.Int64("request_id", request.ID),
			zap.Duration("elapsed", elapsed),
		)
		if errors.Is(err, ErrGenerationFailed) {
			return request, nil, err
		}
		return request, nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if result.ReadTime <= 0 {
		result.ReadTime = ReadTimeMinutes(result.WordCount)
	}

	updated, err := s.storage.UpdateSpeechRequest(ctx, request.ID, SpeechRequestUpdate{
		GeneratedSpeech: &result.Speech,
		WordCount:       &result.WordCount,
	})
	if err != nil {
		span.RecordError(err)
		s.metrics.RecordGeneration(ctx, provider, observe.StatusStorageError, elapsed)
		s.logger.Logger(ctx).Error("[Speech] Could not attach generated speech", zap.Error(err), zap.Int64("request_id", request.ID))
		return request, nil, fmt.Errorf("attach speech result: %w", err)
	}

	s.metrics.RecordGeneration(ctx, provider, observe.StatusOK, elapsed)
	s.logger.Logger(ctx).Info("[Speech] Speech generated",
		zap.Int64("request_id", request.ID),
		zap.Int("word_count", result.WordCount),
		zap.Int("read_time", result.ReadTime),
		zap.Duration("elapsed", elapsed),
	)

	return updated, result, nil
}

// Regenerate runs Generate again with the form of a stored request. The new
// attempt gets its own record.
func (s *Service) Regenerate(ctx context.Context, id int64) (*SpeechRequest, *SpeechResult, error) {
	tracer := otel.Tracer("speech/Regenerate")
	ctx, span := tracer.Start(ctx, "Regenerate")
	defer span.End()
	span.SetAttributes(attribute.Int64("request.id", id))

	previous, err := s.storage.GetSpeechRequest(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	s.logger.Logger(ctx).Info("[Speech] Regenerating speech", zap.Int64("previous_request_id", id))
	return s.Generate(ctx, previous.FormData)
}

func (s *Service) Get(ctx context.Context, id int64) (*SpeechRequest, error) {
	tracer := otel.Tracer("speech/Get")
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()

	return s.storage.GetSpeechRequest(ctx, id)
}

func (s *Service) Analyze(ctx context.Context, text string) analyzer.Report {
	tracer := otel.Tracer("speech/Analyze")
	ctx, span := tracer.Start(ctx, "Analyze")
	defer span.End()

	report := analyzer.Analyze(text)
	s.metrics.RecordAnalysis(ctx)
	span.SetAttributes(
		attribute.Int("speech.words", report.Findings.WordCount),
		attribute.Int("speech.sentences", report.Findings.SentenceCount),
	)
	return report
}

func (s *Service) Narrate(ctx context.Context, text string) ([]byte, error) {
	tracer := otel.Tracer("speech/Narrate")
	ctx, span := tracer.Start(ctx, "Narrate")
	defer span.End()

	if s.narrator == nil {
		return nil, ErrNarrationUnavailable
	}
	audio, err := s.narrator.Narrate(ctx, text)
	if err != nil {
		span.RecordError(err)
		s.logger.Logger(ctx).Error("[Speech] Narration failed", zap.Error(err))
		return nil, err
	}
	return audio, nil
}

func (s *Service) CanNarrate() bool {
	return s.narrator != nil
}

// Ready reports whether the store answers.
func (s *Service) Ready(ctx context.Context) error {
	return s.storage.Ping(ctx)
}
