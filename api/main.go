// Package api is the HTTP surface of the speech service.
package api

import (
	"net/http"
	"time"

	"introspeechdev/health"
	"introspeechdev/logger"
	"introspeechdev/observe"
	"introspeechdev/speech"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// MaxBodyBytes caps every request body.
const MaxBodyBytes = 64 << 10

type RouterProps struct {
	Logger  *logger.LogMiddleware
	Service *speech.Service
	Metrics *observe.Metrics
	// Health and MetricsHandler are mounted when set.
	Health         *health.Handler
	MetricsHandler http.Handler
}

type handlers struct {
	logger  *logger.LogMiddleware
	service *speech.Service
}

func NewRouter(args RouterProps) http.Handler {
	h := &handlers{logger: args.Logger, service: args.Service}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLoggerMiddleware(args.Logger))
	r.Use(metricsMiddleware(args.Metrics))

	if args.Health != nil {
		args.Health.Register(r)
	}
	if args.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", args.MetricsHandler)
	}

	r.Route("/api/speech", func(r chi.Router) {
		r.Use(limitBody(MaxBodyBytes))
		r.Post("/generate", h.generate)
		r.Post("/analyze", h.analyze)
		r.Post("/audio", h.audio)
		r.Get("/{id}", h.get)
		r.Post("/{id}/regenerate", h.regenerate)
	})

	return otelhttp.NewHandler(r, "introspeech")
}

func requestLoggerMiddleware(logger *logger.LogMiddleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger.Logger(ctx).Info("Request Received",
				zap.String("url", r.URL.Path),
				zap.String("method", r.Method),
				zap.String("request_id", middleware.GetReqID(ctx)),
			)
			next.ServeHTTP(w, r)
			logger.Logger(ctx).Info("Request Completed", zap.String("path", r.URL.Path), zap.String("method", r.Method))
		})
	}
}

func metricsMiddleware(metrics *observe.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.RecordHTTPRequest(r.Context(), r.Method, route, status, time.Since(start))
		})
	}
}

func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
