// Package health serves the liveness and readiness probes. /healthz always
// answers 200 while the process serves HTTP; /readyz answers 200 only when
// every registered Checker passes, and reports how long each one took.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"introspeechdev/logger"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const checkTimeout = 5 * time.Second

// Checker probes one dependency. Check must respect context cancellation.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

type checkResult struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

type result struct {
	Status string                 `json:"status"`
	Checks map[string]checkResult `json:"checks,omitempty"`
}

type HealthProps struct {
	// Logger is optional.
	Logger   *logger.LogMiddleware
	Checkers []Checker
}

type Handler struct {
	logger   *logger.LogMiddleware
	checkers []Checker
}

func New(args HealthProps) *Handler {
	c := make([]Checker, len(args.Checkers))
	copy(c, args.Checkers)
	return &Handler{logger: args.Logger, checkers: c}
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, result{Status: "ok"})
}

// Readyz runs every checker concurrently, each under its own timeout.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	tracer := otel.Tracer("health/Readyz")
	ctx, span := tracer.Start(r.Context(), "Readyz")
	defer span.End()

	var (
		mu     sync.Mutex
		checks = make(map[string]checkResult, len(h.checkers))
		g      errgroup.Group
	)
	for _, c := range h.checkers {
		g.Go(func() error {
			res := h.run(ctx, c)
			mu.Lock()
			checks[c.Name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	res := result{Status: "ok", Checks: checks}
	status := http.StatusOK
	for name, c := range checks {
		span.SetAttributes(attribute.Int64("check."+name+".latency_ms", c.LatencyMS))
		if c.Status != "ok" {
			res.Status = "fail"
			status = http.StatusServiceUnavailable
		}
	}
	if status != http.StatusOK {
		span.SetStatus(codes.Error, "not ready")
	}

	writeJSON(w, status, res)
}

func (h *Handler) run(ctx context.Context, c Checker) checkResult {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := c.Check(ctx)
	elapsed := time.Since(start)

	if err != nil {
		if h.logger != nil {
			h.logger.Logger(ctx).Warn("[Health] Readiness check failed",
				zap.String("check", c.Name),
				zap.Duration("elapsed", elapsed),
				zap.Error(err),
			)
		}
		return checkResult{Status: "fail", LatencyMS: elapsed.Milliseconds(), Error: err.Error()}
	}
	return checkResult{Status: "ok", LatencyMS: elapsed.Milliseconds()}
}

// Register mounts /healthz and /readyz on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
