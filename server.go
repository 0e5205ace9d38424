package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"introspeechdev/api"
	"introspeechdev/database/memory"
	"introspeechdev/database/postgres"
	"introspeechdev/health"
	"introspeechdev/logger"
	"introspeechdev/modelapi"
	"introspeechdev/modelapi/geminiapi"
	"introspeechdev/modelapi/groqapi"
	"introspeechdev/modelapi/openaiapi"
	"introspeechdev/observe"
	"introspeechdev/speech"
	"introspeechdev/telegram"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperdxio/opentelemetry-logs-go/exporters/otlp/otlplogs"
	sdk "github.com/hyperdxio/opentelemetry-logs-go/sdk/logs"
	"github.com/hyperdxio/otel-config-go/otelconfig"
)

const (
	defaultPort     = "5000"
	serviceName     = "introspeech"
	shutdownTimeout = 10 * time.Second
)

func main() {
	godotenv.Load()
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	production := os.Getenv("PRODUCTION") != ""

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry()
	if err != nil {
		log.Fatalf("Error setting up OTel SDK - %e", err)
	}
	defer otelShutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logExporter, _ := otlplogs.NewExporter(ctx)
	loggerProvider := sdk.NewLoggerProvider(sdk.WithBatcher(logExporter))
	defer loggerProvider.Shutdown(context.Background())

	LogMiddleware := logger.Connect(logger.LoggerConnectProps{Production: production, LoggerProvider: loggerProvider})
	defer LogMiddleware.Sync()
	Logger := LogMiddleware.Logger(ctx)

	storage, closeStorage, err := connectStorage(ctx, LogMiddleware)
	if err != nil {
		Logger.Fatal("[Server] Could not connect storage", zap.Error(err))
	}
	defer closeStorage()

	generator, narrator, err := connectGenerator(ctx, LogMiddleware)
	if err != nil {
		Logger.Fatal("[Server] Could not connect generation provider", zap.Error(err))
	}

	meterProvider, err := observe.NewPrometheusMeterProvider(serviceName)
	if err != nil {
		Logger.Fatal("[Server] Could not create meter provider", zap.Error(err))
	}
	defer meterProvider.Shutdown(context.Background())
	metrics, err := observe.NewMetrics(meterProvider)
	if err != nil {
		Logger.Fatal("[Server] Could not create metrics", zap.Error(err))
	}

	service := speech.NewService(speech.ServiceProps{
		Logger:       LogMiddleware,
		Storage:      storage,
		Generator:    generator,
		Narrator:     narrator,
		Metrics:      metrics,
		SystemPrompt: modelapi.SYSTEM_PROMPT,
	})

	readiness := health.New(health.HealthProps{
		Logger:   LogMiddleware,
		Checkers: []health.Checker{{Name: "storage", Check: service.Ready}},
	})

	router := api.NewRouter(api.RouterProps{
		Logger:         LogMiddleware,
		Service:        service,
		Metrics:        metrics,
		Health:         readiness,
		MetricsHandler: observe.Handler(),
	})

	if telegram.Configured() {
		bot, err := telegram.Connect(ctx, telegram.TelegramConnectProps{Logger: LogMiddleware, Service: service})
		if err != nil {
			Logger.Error("[Server] Telegram bot disabled", zap.Error(err))
		} else {
			go bot.Listen(ctx)
		}
	}

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		Logger.Info("[Server] Listening",
			zap.String("port", port),
			zap.Bool("production", production),
			zap.String("generator", generator.Name()),
			zap.Bool("narration", narrator != nil),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Error("[Server] HTTP server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	Logger.Info("[Server] Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		Logger.Error("[Server] Graceful shutdown failed", zap.Error(err))
	}
}

// connectStorage picks Postgres when it is configured and the in-memory
// store otherwise.
func connectStorage(ctx context.Context, logMiddleware *logger.LogMiddleware) (speech.Storage, func(), error) {
	if !postgres.Configured() {
		logMiddleware.Logger(ctx).Info("[Server] POSTGRES_DB_HOST not set, using in-memory storage")
		return memory.New(), func() {}, nil
	}

	db, err := postgres.Connect(ctx, postgres.DatabaseConnectProps{Logger: logMiddleware})
	if err != nil {
		return nil, nil, err
	}
	return db, func() { db.Close() }, nil
}

// generationProvider reads GENERATION_PROVIDER, defaulting to openai.
func generationProvider() (string, error) {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("GENERATION_PROVIDER")))
	switch provider {
	case "":
		return "openai", nil
	case "openai", "gemini", "groq":
		return provider, nil
	default:
		return "", fmt.Errorf("unknown GENERATION_PROVIDER %q", provider)
	}
}

// connectGenerator builds the configured generator. A missing credential
// does not stop startup. Narration is served by OpenAI whenever an OpenAI
// key is present.
func connectGenerator(ctx context.Context, logMiddleware *logger.LogMiddleware) (speech.Generator, speech.Narrator, error) {
	provider, err := generationProvider()
	if err != nil {
		return nil, nil, err
	}

	hasOpenAIKey := os.Getenv("OPENAI_API_KEY") != ""

	var openAI *openaiapi.OpenAI
	if hasOpenAIKey || provider == "openai" {
		openAI = openaiapi.Connect(ctx, openaiapi.OpenAIConnectProps{Logger: logMiddleware})
	}

	var narrator speech.Narrator
	if hasOpenAIKey {
		narrator = openAI
	}

	switch provider {
	case "gemini":
		gemini, err := geminiapi.Connect(ctx, geminiapi.GeminiConnectProps{Logger: logMiddleware})
		if err != nil {
			return nil, nil, err
		}
		return gemini, narrator, nil
	case "groq":
		return groqapi.Connect(ctx, groqapi.GroqConnectProps{Logger: logMiddleware}), narrator, nil
	default:
		return openAI, narrator, nil
	}
}
